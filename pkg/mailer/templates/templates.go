package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

// Template names accepted in EmailJob.Template.
const (
	PurchaseReceipt = "purchase_receipt"
	Welcome         = "welcome"
)

// ReceiptItem is one purchased game line in the receipt email.
type ReceiptItem struct {
	Name  string
	Price float64
}

var receiptHTML = htmpl.Must(htmpl.New(PurchaseReceipt).Parse(`<html><body>
<h2>Thanks for your purchase, {{.Name}}!</h2>
<table>
{{range .Items}}<tr><td>{{.Name}}</td><td>${{printf "%.2f" .Price}}</td></tr>
{{end}}</table>
<p><strong>Total: ${{printf "%.2f" .TotalPrice}}</strong> ({{.PaymentMethod}})</p>
<p>Your games are ready in your library.</p>
</body></html>`))

var receiptText = texttpl.Must(texttpl.New(PurchaseReceipt).Parse(`Thanks for your purchase, {{.Name}}!
{{range .Items}}- {{.Name}}: ${{printf "%.2f" .Price}}
{{end}}Total: ${{printf "%.2f" .TotalPrice}} ({{.PaymentMethod}})
Your games are ready in your library.`))

var welcomeHTML = htmpl.Must(htmpl.New(Welcome).Parse(`<html><body>
<h2>Welcome, {{.Name}}!</h2>
<p>Your account is ready. Browse the catalog and build your library.</p>
</body></html>`))

var welcomeText = texttpl.Must(texttpl.New(Welcome).Parse(`Welcome, {{.Name}}!
Your account is ready. Browse the catalog and build your library.`))

type receiptData struct {
	Name          string
	Items         []ReceiptItem
	TotalPrice    float64
	PaymentMethod string
}

// Render produces subject, text and HTML bodies for a named template.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	switch name {
	case PurchaseReceipt:
		d := receiptData{
			Name:          str(data, "Name"),
			PaymentMethod: str(data, "PaymentMethod"),
			TotalPrice:    num(data, "TotalPrice"),
		}
		if raw, ok := data["Items"].([]any); ok {
			for _, it := range raw {
				if m, ok := it.(map[string]any); ok {
					d.Items = append(d.Items, ReceiptItem{Name: str(m, "Name"), Price: num(m, "Price")})
				}
			}
		}
		subject = fmt.Sprintf("Your purchase receipt (%d item(s))", len(d.Items))
		text, err = renderText(receiptText, d)
		if err != nil {
			return
		}
		html, err = renderHTML(receiptHTML, d)
		return
	case Welcome:
		d := map[string]string{"Name": str(data, "Name")}
		subject = "Welcome to the store"
		text, err = renderText(welcomeText, d)
		if err != nil {
			return
		}
		html, err = renderHTML(welcomeHTML, d)
		return
	default:
		err = fmt.Errorf("unknown email template %q", name)
		return
	}
}

func renderText(t *texttpl.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderHTML(t *htmpl.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func str(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func num(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
