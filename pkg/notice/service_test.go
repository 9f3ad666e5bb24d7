package notice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadTemplate(t *testing.T) {
	html := loadTemplate("templates/email/twofa_code.html")
	assert.True(t, strings.Contains(html, "{{.Passcode}}"))

	text := loadTemplate("templates/email/twofa_code.tmpl")
	assert.True(t, strings.Contains(text, "{{.Passcode}}"))
}

func TestLoadTemplateMissing(t *testing.T) {
	content := loadTemplate("templates/email/does_not_exist.tmpl")
	assert.Empty(t, content)
}
