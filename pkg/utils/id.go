package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

// Alfabeto sem caracteres ambíguos (0/O, 1/l/I) para facilitar a busca
// de um despacho nos logs
const idAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnpqrstuvwxyz"

// GenerateID gera o identificador curto anexado a cada despacho de
// notificação
func GenerateID() (string, error) {
	return gonanoid.Generate(idAlphabet, 8)
}
