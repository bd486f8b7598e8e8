package fragment

import "github.com/microcosm-cc/bluemonday"

// FormPolicy returns a UGC policy extended with the form controls and data-*
// attributes the generator fragments rely on. Scripts and event handlers are
// still stripped.
func FormPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("form", "input", "select", "option", "optgroup", "textarea", "label", "fieldset", "legend", "button")
	policy.AllowAttrs("name", "value", "type", "checked", "selected", "disabled", "multiple", "required", "placeholder", "for", "id", "class").Globally()
	policy.AllowAttrs("action", "method").OnElements("form")
	policy.AllowDataAttributes()
	return policy
}
