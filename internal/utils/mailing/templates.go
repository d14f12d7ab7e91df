package mailing

import (
	"bytes"
	"html/template"
)

var (
	welcomeTemplate = template.Must(template.New("welcome").Parse(
		`<p>Hi {{.FirstName}},</p>
<p>your Foodgram account <b>{{.Username}}</b> is ready. Start sharing recipes at <a href="{{.AppURL}}">{{.AppURL}}</a>.</p>`))

	passwordChangedTemplate = template.Must(template.New("password_changed").Parse(
		`<p>Hi {{.FirstName}},</p>
<p>the password of your Foodgram account <b>{{.Username}}</b> was just changed. If this was not you, reset it immediately.</p>`))
)

type UserMailData struct {
	FirstName string
	Username  string
	AppURL    string
}

func WelcomeBody(data UserMailData) (string, error) {
	return render(welcomeTemplate, data)
}

func PasswordChangedBody(data UserMailData) (string, error) {
	return render(passwordChangedTemplate, data)
}

func render(t *template.Template, data UserMailData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
