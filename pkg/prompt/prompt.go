package prompt

import (
	"strings"
	"text/template"

	"policygen/entities"
)

const policyTemplate = `Using only the context provided, please generate a concise insurance policy document that addresses the user's query. Do not use any external knowledge.

Context:
{{- range .Documents}}
    - {{.Content}}
{{- end}}

Query: {{.Query}}

Generated Policy:
`

var tmpl = template.Must(template.New("policy").Parse(policyTemplate))

// Build renders the policy prompt for query over docs, in retrieval order.
func Build(query string, docs []entities.Document) (string, error) {
	var b strings.Builder
	err := tmpl.Execute(&b, struct {
		Query     string
		Documents []entities.Document
	}{Query: query, Documents: docs})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
