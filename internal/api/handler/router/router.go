package router

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// Route associa um método e um caminho a um handler HTTP
type Route struct {
	Path    string
	Method  string
	Handler http.Handler
}

// Router agrupa as rotas da API sobre o httprouter
type Router struct {
	mux *httprouter.Router
}

// New monta o router a partir dos grupos de rotas de cada handler
func New(groups ...[]Route) *Router {
	mux := httprouter.New()

	for _, group := range groups {
		for _, route := range group {
			mux.Handler(route.Method, route.Path, route.Handler)
		}
	}

	return &Router{mux: mux}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}
