// Package widgetcatalog is a reference server for the widget code generator.
// It serves the generator page, the skin list and skin form fragments, the
// compile endpoint and the setup endpoint that turns a code string back into
// populated forms.
//
// Widgets and skins are described by a YAML catalog; the embedded
// data/catalog.yaml is used unless WithCatalog supplies another. Code strings
// have the form
//
//	<xewidget id="banner" skin-id="dark"><title>Hello</title><skin><color>red</color></skin></xewidget>
package widgetcatalog
