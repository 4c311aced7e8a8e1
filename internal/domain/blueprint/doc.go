// Package blueprint loads app specs from files.
//
// A file holds either a plain ui_spec object or the blueprint layout with
// "app" metadata and a shorthand "ui" section. JSON (.json, .bp), YAML
// (.yaml, .yml) and TOML (.toml) are accepted. Every loaded spec is
// validated the same way a generated one is before install.
//
//	doc, err := blueprint.Load("apps/calculator.bp")
//	if err != nil {
//	    return err
//	}
//	err = session.Install(ctx, doc.AppID, doc.Spec)
package blueprint
