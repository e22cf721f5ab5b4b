package htmlclean_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/valislegal/valis/internal/htmlclean"
)

func TestSanitize_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n\t"} {
		require.Equal(t, htmlclean.EmptyParagraph, htmlclean.Sanitize(in))
	}
}

func TestSanitize_FullDocumentReturnsBodyOnly(t *testing.T) {
	in := `<html xmlns:o="urn:schemas-microsoft-com:office:office">
<head><title>Contratto</title><style>p{margin:0}</style></head>
<BODY lang=IT style='tab-interval:35.4pt'>
<div class=WordSection1><p>Premesso che</p></div>
<br clear=all style='page-break-before:always'>
<div style="page-break-after: always;"><p>Art. 1</p></div>
</BODY></html>`

	out := htmlclean.Sanitize(in)
	require.NotContains(t, out, "<html")
	require.NotContains(t, out, "<head")
	require.NotContains(t, out, "Contratto</title>")
	require.Contains(t, out, "<p>Premesso che</p>")
	require.Contains(t, out, "<p>Art. 1</p>")
	require.NotContains(t, strings.ToLower(out), "page-break")
	require.Contains(t, out, "<br clear=all>")
	require.Contains(t, out, "<div><p>Art. 1</p></div>")
}

func TestSanitize_RemovesConditionalAndPlainComments(t *testing.T) {
	in := `<body><!--[if gte mso 9]><xml><o:OfficeDocumentSettings/></xml><![endif]-->` +
		`<p>Uno</p><!-- nota interna --><p>Due</p><![if !supportLists]><span>1.</span><![endif]></body>`

	out := htmlclean.Sanitize(in)
	require.Equal(t, "<p>Uno</p><p>Due</p>", out)
}

func TestSanitize_PlainTextParagraphs(t *testing.T) {
	in := "Prima riga\nseconda riga\n\n\nNuovo paragrafo & altro"

	out := htmlclean.Sanitize(in)
	require.Equal(t, "<p>Prima riga<br>seconda riga</p><p>Nuovo paragrafo &amp; altro</p>", out)
}

func TestSanitize_FragmentPassesThrough(t *testing.T) {
	in := `<h1>Titolo</h1><p style="page-break-before:always">Testo</p>`

	out := htmlclean.Sanitize(in)
	require.Equal(t, `<h1>Titolo</h1><p>Testo</p>`, out)
}

func TestSanitize_OnlyCommentsYieldPlaceholder(t *testing.T) {
	require.Equal(t, htmlclean.EmptyParagraph, htmlclean.Sanitize("<body><!-- nothing --></body>"))
}

func TestExtractBody_Unclosed(t *testing.T) {
	require.Equal(t, "<p>x</p>", htmlclean.ExtractBody("<html><body class=a><p>x</p>"))
	require.Equal(t, "<p>y</p>", htmlclean.ExtractBody("<p>y</p>"))
}

func TestPlainText(t *testing.T) {
	out := htmlclean.PlainText("<h1>Titolo</h1><p>Uno   due<br>tre</p><ul><li>a</li><li>b</li></ul><script>x()</script>")
	require.Equal(t, "Titolo\nUno due\ntre\na\nb", out)
}
