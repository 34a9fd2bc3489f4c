package mailer

import (
	_ "embed"
	"fmt"

	"github.com/flosch/pongo2/v6"
)

// Template identifies an email template.
type Template string

const (
	TemplateActivateAccount Template = "activate_account"
)

//go:embed templates/activate_account.html
var activateAccountSource string

var templates = map[Template]*pongo2.Template{
	TemplateActivateAccount: pongo2.Must(pongo2.FromString(activateAccountSource)),
}

// Render executes the named template with vars.
func Render(name Template, vars map[string]any) (string, error) {
	tpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}

	out, err := tpl.Execute(pongo2.Context(vars))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}

	return out, nil
}
