package service

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const (
	welcomeSubject   = "Welcome to Kicks Premium!"
	newProductPrefix = "New drop! "
)

var welcomeText = texttemplate.Must(texttemplate.New("welcome").Parse(
	`Welcome to Kicks Premium!

You'll be the first to hear about new drops, restocks and limited editions.

Browse the latest releases at {{.SiteURL}}/productos

Not for you? Unsubscribe at {{.SiteURL}}/newsletter/unsubscribe?email={{.Email}}
`))

var welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome").Parse(
	`<h1>Welcome to Kicks Premium!</h1>
<p>You'll be the first to hear about new drops, restocks and limited editions.</p>
<p><a href="{{.SiteURL}}/productos">Browse the latest releases</a></p>
<p><small><a href="{{.SiteURL}}/newsletter/unsubscribe?email={{.Email}}">Unsubscribe</a></small></p>
`))

var newProductText = texttemplate.Must(texttemplate.New("new_product").Funcs(texttemplate.FuncMap{"money": formatPrice}).Parse(
	`New drop: {{if .Brand}}{{.Brand}} {{end}}{{.Name}}

Price: {{money .Price}}

See it at {{.SiteURL}}/productos/{{.Slug}}

Unsubscribe at {{.SiteURL}}/newsletter/unsubscribe?email={{.Email}}
`))

var newProductHTML = htmltemplate.Must(htmltemplate.New("new_product").Funcs(htmltemplate.FuncMap{"money": formatPrice}).Parse(
	`<h1>New drop!</h1>
{{if .Image}}<img src="{{.Image}}" alt="{{.Name}}" width="480">{{end}}
<h2>{{if .Brand}}{{.Brand}} {{end}}{{.Name}}</h2>
<p><strong>{{money .Price}}</strong></p>
<p><a href="{{.SiteURL}}/productos/{{.Slug}}">Shop now</a></p>
<p><small><a href="{{.SiteURL}}/newsletter/unsubscribe?email={{.Email}}">Unsubscribe</a></small></p>
`))

type mailData struct {
	SiteURL string
	Email   string
	Name    string
	Brand   string
	Slug    string
	Image   string
	Price   int64
}

func renderBoth(text *texttemplate.Template, html *htmltemplate.Template, data mailData) (string, string, error) {
	var t, h bytes.Buffer
	if err := text.Execute(&t, data); err != nil {
		return "", "", err
	}
	if err := html.Execute(&h, data); err != nil {
		return "", "", err
	}
	return t.String(), h.String(), nil
}

func formatPrice(cents int64) string {
	return fmt.Sprintf("€%d.%02d", cents/100, cents%100)
}
