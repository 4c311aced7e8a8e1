// Package lifecycle runs the on_mount and on_unmount hooks of an app spec
// through the tool executor, one after another, each isolated.
package lifecycle
