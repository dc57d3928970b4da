package server

import (
	"html/template"

	"github.com/venture-data/Call-Analysis-Demo/internal/service/analysis"
	"github.com/venture-data/Call-Analysis-Demo/internal/session"
)

// pageData is everything the index template needs for one render pass.
type pageData struct {
	ServiceName string
	Flash       *session.Flash
	HasUpload   bool
	Filename    string
	AudioSrc    template.URL
	Analyzed    bool
	Transcript  string
	HasAnalysis bool
	Result      *analysis.Result
	ParseError  string
	Answer      string
}

var indexTemplate = template.Must(template.New("index").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.ServiceName}} - GenAI Calls Analysis</title>
<style>
  body { font-family: sans-serif; max-width: 860px; margin: 2rem auto; padding: 0 1rem; color: #222; }
  h1 { text-align: center; }
  section { margin: 1.5rem 0; }
  .banner { padding: .6rem 1rem; border-radius: 4px; margin: .5rem 0; }
  .banner.success { background: #e6f4ea; color: #1e7e34; border: 1px solid #1e7e34; }
  .banner.error { background: #fdecea; color: #c0392b; border: 1px solid #c0392b; }
  .banner.warning { background: #fff8e1; color: #8a6d3b; border: 1px solid #8a6d3b; }
  .transcript { max-height: 300px; overflow-y: auto; border: 1px solid #ccc; padding: .8rem; white-space: pre-wrap; background: #fafafa; }
  table.entities td { padding: .3rem .8rem; border-bottom: 1px solid #eee; }
  table.entities td:first-child { font-weight: bold; }
  textarea, input[type=text] { width: 100%; }
</style>
</head>
<body>
<h1>GenAI - Calls Analysis</h1>

{{with .Flash}}<div class="banner {{.Kind}}">{{.Text}}</div>{{end}}

<section>
  <h2>Upload an audio file (WAV or MP3)</h2>
  <form action="/upload" method="post" enctype="multipart/form-data">
    <input type="file" name="audio" accept=".wav,.mp3,audio/wav,audio/mpeg" required>
    <button type="submit">Upload</button>
  </form>
</section>

{{if .HasUpload}}
<section>
  <p>{{.Filename}}</p>
  <audio controls src="{{.AudioSrc}}"></audio>
  <form action="/analyze" method="post">
    <button type="submit">Analyse</button>
  </form>
</section>
{{end}}

{{if .Analyzed}}
<section>
  <h2>Transcription</h2>
  <div class="transcript">{{.Transcript}}</div>
</section>
{{end}}

{{if .HasAnalysis}}
<section>
  <h2>Analysis</h2>
  {{if .ParseError}}
  <div class="banner error">{{.ParseError}}</div>
  {{else}}
  <h3>Call Summary</h3>
  <p>{{.Result.Summary}}</p>

  <h3>Class</h3>
  <p>{{.Result.Class}}</p>

  <h3>Reasoning</h3>
  <p>{{.Result.Explanation}}</p>

  <h3>Entities</h3>
  <table class="entities">
    {{range $i, $e := .Result.Entities}}
    <tr><td>{{inc $i}}. {{$e.Name}}</td><td>{{$e.Value}}</td></tr>
    {{end}}
  </table>

  {{if .Result.Class.Booked}}
  <div class="banner success">Trigger sent.</div>
  {{else}}
  <div class="banner error">Trigger sent.</div>
  {{end}}
  {{end}}
</section>
{{end}}

{{if .Analyzed}}
<section>
  <h2>Ask a question about this call</h2>
  <form action="/question" method="post">
    <input type="text" name="question" placeholder="e.g. What service did the caller request?">
    <button type="submit">Submit Question</button>
  </form>
  {{if .Answer}}
  <h3>Answer</h3>
  <p>{{.Answer}}</p>
  {{end}}
</section>
{{end}}

</body>
</html>
`
