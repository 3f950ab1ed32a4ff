package demoserver

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>codeprobe demo analyzer</title></head>
<body>
<h1>codeprobe demo analyzer</h1>
<p>POST code to <code>/analyze</code> as JSON <code>{"code": "..."}</code> or as a multipart <code>file</code>.</p>
<p><a href="/demo/control">Control panel</a></p>
</body>
</html>`

// interstitialHTML imitates the free ngrok browser warning.
const interstitialHTML = `<!DOCTYPE html>
<html>
<head><title>ngrok</title></head>
<body>
<h1>You are about to visit this site</h1>
<p>This website is served for free through ngrok.</p>
<form method="get"><button type="submit">Visit Site</button></form>
<p class="code">ERR_NGROK_6024</p>
</body>
</html>`

const badGatewayHTML = `<!DOCTYPE html>
<html>
<head><title>502 Bad Gateway</title></head>
<body><h1>502 Bad Gateway</h1><p>The analysis engine is not responding.</p></body>
</html>`

const controlPanelHTML = `<!DOCTYPE html>
<html>
<head><title>Demo Control Panel</title></head>
<body>
<h1>Demo Control Panel</h1>
<p>Listening on port {{.Port}}. Answered {{.Requests}} analysis requests.</p>
<p>Current mode: <strong>{{.Mode}}</strong></p>
{{range .Modes}}
<form method="post" action="/demo/mode" style="display:inline">
  <input type="hidden" name="set" value="{{.}}">
  <button type="submit">{{.}}</button>
</form>
{{end}}
</body>
</html>`
