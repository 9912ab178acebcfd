package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/matzehuels/lassoview/internal/scene"
)

//go:embed assets/index.html
var assets embed.FS

var pageTemplate = template.Must(template.ParseFS(assets, "assets/index.html"))

type pageData struct {
	Title     string
	ScatterID string
	NetworkID string
	Scatter   template.HTML
	Status    string
	Records   int
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sc := s.Scene()
	d := pageData{
		Title:     s.opts.Title,
		ScatterID: scene.ScatterID,
		NetworkID: scene.NetworkID,
		Scatter:   template.HTML(inlineSVG(sc.Scatter.SVG())),
		Status:    networkStatus(sc),
		Records:   len(sc.Records),
	}
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, d); err != nil {
		s.logger.Error("render page", "err", err)
		http.Error(w, "render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// inlineSVG strips the XML prolog so the document can sit inside HTML.
func inlineSVG(doc []byte) []byte {
	if i := bytes.Index(doc, []byte("<svg")); i > 0 {
		return doc[i:]
	}
	return doc
}
