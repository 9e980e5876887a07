package share

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"nearby/internal/domain/entity"
	"nearby/internal/domain/service"
	"nearby/internal/errors"
)

var pageTemplate = template.Must(template.New("share").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<h2>{{.Title}}</h2>
<p>{{.Address}}</p>
{{- if .Text}}
<p style="white-space:pre-line">{{.Text}}</p>
{{- end}}
{{- range $i, $p := .Photos}}
<p>
<a download="{{$p.FileName}}" href="{{$p.DataURL}}">Download Photo {{inc $i}}</a><br/>
{{- if $p.Inline}}
<img src="{{$p.DataURL}}" alt="{{$p.FileName}}" style="max-width:280px;margin:8px 0;display:block"/>
{{- end}}
</p>
{{- end}}
{{- if .QRCode}}
<p><img src="{{.QRCode}}" alt="QR code of this page" width="160" height="160"/></p>
{{- end}}
{{- if .Link}}
<p><a href="{{.Link}}">{{.Link}}</a></p>
{{- end}}
</body>
</html>
`))

type pagePhoto struct {
	FileName string
	DataURL  template.URL
	Inline   bool
}

const opaqueMIMEType = "application/octet-stream"

type pageView struct {
	Title   string
	Address string
	Text    string
	Photos  []pagePhoto
	QRCode  template.URL
	Link    string
}

func renderPage(page *service.FallbackPage, link string, qrDataURL string) ([]byte, error) {
	view := pageView{
		Title:   page.Title,
		Address: page.Address,
		Text:    page.Text,
		Photos:  make([]pagePhoto, 0, len(page.Photos)),
		QRCode:  template.URL(qrDataURL), //nolint:gosec // produced locally from PNG bytes
		Link:    link,
	}
	for _, p := range page.Photos {
		view.Photos = append(view.Photos, viewPhoto(p))
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return nil, errors.Wrap(err, "failed to render share page")
	}

	return buf.Bytes(), nil
}

// viewPhoto inlines image data URLs. Everything else, including entries that
// do not decode, is offered as an opaque download only.
func viewPhoto(p service.FallbackPhoto) pagePhoto {
	mimeType, _, err := entity.DecodeDataURL(p.DataURL)
	if err == nil && strings.HasPrefix(mimeType, "image/") && strings.HasPrefix(p.DataURL, "data:image/") {
		return pagePhoto{
			FileName: p.FileName,
			DataURL:  template.URL(p.DataURL), //nolint:gosec // decoded image data URL
			Inline:   true,
		}
	}

	return pagePhoto{
		FileName: p.FileName,
		DataURL:  template.URL(opaqueDataURL(p.DataURL)), //nolint:gosec // relabelled as octet-stream
	}
}

// opaqueDataURL keeps the payload of raw but declares it application/octet-stream.
func opaqueDataURL(raw string) string {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return "data:" + opaqueMIMEType + "," + url.QueryEscape(raw)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "data:" + opaqueMIMEType + "," + url.QueryEscape(rest)
	}
	if strings.HasSuffix(meta, ";base64") {
		return "data:" + opaqueMIMEType + ";base64," + payload
	}

	return "data:" + opaqueMIMEType + "," + payload
}
