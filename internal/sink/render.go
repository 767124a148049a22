package sink

import (
	"bytes"
	"fmt"
	"html/template"

	"vaxcert/internal/compose"
)

// The renderer turns the typed block sequence into a standalone printable HTML
// page. Rendering is a dumb projection: geometry and text all come from the
// blocks, so the output is as deterministic as the composition.
const certificateHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Certificate {{.Identifier}}</title>
  <style>
    body { margin: 0; font-family: Georgia, "Times New Roman", serif; color: #1f2937; }
    .page { position: relative; width: 595pt; height: 842pt; margin: 0 auto; background: #ffffff; overflow: hidden; }
    .block { position: absolute; box-sizing: border-box; }
    .border { border: 2pt solid #1e3a5f; }
    .watermark { color: rgba(30, 58, 95, 0.08); font-size: 64pt; letter-spacing: 12pt; display: flex; align-items: center; justify-content: center; }
    .header.filled { background: #1e3a5f; color: #ffffff; padding-top: 10pt; }
    .header div:first-child { font-size: 20pt; letter-spacing: 2pt; }
    .header div + div { font-size: 11pt; margin-top: 4pt; }
    .subject_panel { font-size: 12pt; line-height: 1.6; border-bottom: 1pt solid #cbd5e1; }
    .dose_panel { border: 1pt solid #cbd5e1; border-radius: 6pt; padding: 8pt 8pt 8pt 56pt; font-size: 11pt; line-height: 1.5; }
    .dose_panel .marker { position: absolute; left: 10pt; top: 20pt; width: 32pt; height: 32pt; border-radius: 50%; background: #1e3a5f; color: #ffffff; display: flex; align-items: center; justify-content: center; font-size: 16pt; }
    .verification_stamp { border: 2pt solid #7f1d1d; border-radius: 50%; color: #7f1d1d; font-size: 10pt; letter-spacing: 1pt; display: flex; flex-direction: column; align-items: center; justify-content: center; }
    .footer { font-size: 9pt; color: #6b7280; }
    .align-left { text-align: left; }
    .align-center { text-align: center; }
    .align-right { text-align: right; }
  </style>
</head>
<body>
  <div class="page">
    {{range .Blocks}}
    <div class="block {{.Role}}{{if .Filled}} filled{{end}} align-{{.Align}}" style="{{blockStyle .}}">
      {{if and .Circular (eq (printf "%s" .Role) "dose_panel")}}<span class="marker">{{.Seq}}</span>{{end}}
      {{range .Lines}}<div>{{.}}</div>{{end}}
    </div>
    {{end}}
  </div>
</body>
</html>
`

var certificateTemplate = template.Must(
	template.New("certificate").
		Funcs(template.FuncMap{"blockStyle": blockStyle}).
		Parse(certificateHTMLTemplate),
)

// renderHTML projects a composed document into printable HTML.
func renderHTML(doc compose.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := certificateTemplate.Execute(&buf, doc); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func blockStyle(b compose.Block) template.CSS {
	style := fmt.Sprintf("left:%.1fpt;top:%.1fpt;width:%.1fpt;height:%.1fpt;",
		b.Frame.X, b.Frame.Y, b.Frame.W, b.Frame.H)
	if b.Rotation != 0 {
		style += fmt.Sprintf("transform:rotate(%.1fdeg);", b.Rotation)
	}
	return template.CSS(style)
}
