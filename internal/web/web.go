// Package web embeds the browser gallery page served at the root path.
package web

import (
	"embed"
	"net/http"
)

//go:embed index.html
var content embed.FS

// Gallery serves the embedded single-page gallery UI.
func Gallery(w http.ResponseWriter, r *http.Request) {
	data, err := content.ReadFile("index.html")
	if err != nil {
		http.Error(w, "gallery page unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
