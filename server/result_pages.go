package server

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
)

const contentTypeHTML = "text/html; charset=utf-8"

// Every result page renders a terminal, human-readable state before the
// script attempts the window-to-opener handoff, so a failed handoff never
// leaves a blank or frozen window.
var resultPageTemplate = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, Segoe UI, Helvetica, Arial, sans-serif; background: #f5f6f8; margin: 0; }
main { max-width: 26rem; margin: 15vh auto 0; background: #fff; border-radius: 8px; padding: 2rem; box-shadow: 0 1px 4px rgba(0,0,0,.12); text-align: center; }
h1 { font-size: 1.2rem; margin: 0 0 .75rem; }
p { color: #555; margin: .25rem 0; }
code { background: #f0f1f3; padding: .1rem .35rem; border-radius: 4px; font-size: .85rem; }
</style>
</head>
<body>
<main>
<h1>{{.Heading}}</h1>
{{if .ErrorCode}}<p><code>{{.ErrorCode}}</code></p>{{end}}
<p>{{.Detail}}</p>
</main>
<script>
(function () {
	var legacy = {{.LegacyJSON}};
	var message = {{.MessageJSON}};
	if (window.opener && legacy && message) {
		try {
			window.opener.postMessage(legacy, "*");
			window.opener.postMessage(message, "*");
		} catch (e) {}
		setTimeout(function () { window.close(); }, 1500);
	}
})();
</script>
</body>
</html>
`))

type resultPageData struct {
	Title     string
	Heading   string
	ErrorCode string
	Detail    string

	// MessageJSON / LegacyJSON are the two result shapes posted to the
	// opener, pre-serialized so the script embeds them verbatim.
	MessageJSON template.JS
	LegacyJSON  template.JS
}

func (s *Server) renderErrorPage(w http.ResponseWriter, status int, provider, state, errorCode, detail string) {
	message := oauthmodel.CallbackMessage{
		Type:             oauthmodel.CallbackMessageType,
		State:            state,
		Error:            errorCode,
		ErrorDescription: detail,
	}
	legacy, _ := oauthmodel.FormatLegacyMessage(provider, state, map[string]string{
		"error":             errorCode,
		"error_description": detail,
	})

	s.renderResultPage(w, status, resultPageData{
		Title:       "Sign-in failed",
		Heading:     "Sign-in failed",
		ErrorCode:   errorCode,
		Detail:      detail,
		MessageJSON: toJS(message),
		LegacyJSON:  toJS(legacy),
	})
}

func (s *Server) renderSuccessPage(w http.ResponseWriter, message oauthmodel.CallbackMessage, provider string) {
	legacy, _ := oauthmodel.FormatLegacyMessage(provider, message.State, map[string]any{
		"token": message.Token,
	})

	s.renderResultPage(w, http.StatusOK, resultPageData{
		Title:       "Sign-in complete",
		Heading:     "Sign-in complete",
		Detail:      "You can close this window.",
		MessageJSON: toJS(message),
		LegacyJSON:  toJS(legacy),
	})
}

func (s *Server) renderResultPage(w http.ResponseWriter, status int, data resultPageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = resultPageTemplate.Execute(w, data)
}

// toJS serializes v into a JS expression for the result page script.
func toJS(v any) template.JS {
	raw, err := json.Marshal(v)
	if err != nil {
		return template.JS("null")
	}
	return template.JS(raw)
}
