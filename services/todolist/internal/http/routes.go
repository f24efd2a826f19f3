package http

import "net/http"

// Префиксы REST API: /api/todolist - исходная точка монтирования
var apiPrefixes = []string{"/todolist", "/api/todolist"}

// NewRouter собирает маршруты API и проверки здоровья
func NewRouter(h *ToDoListHandler) *http.ServeMux {
	mux := http.NewServeMux()
	for _, prefix := range apiPrefixes {
		h.Register(mux, prefix)
	}
	mux.HandleFunc("GET /healthz", h.Health)
	return mux
}
