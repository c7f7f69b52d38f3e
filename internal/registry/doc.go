// Package registry holds the components a script declares.
//
// The Registry maps component names to their compiled definitions and keeps
// the anonymous entry workflows in declaration order. It is populated while a
// script is evaluated and queried afterwards, either by the script driver to
// pick the entry point or by an including script that imports components by
// name.
//
// Registration never overwrites: a name collision is reported immediately, so
// two declarations cannot silently shadow each other. Renaming is done by
// building a new definition (see component.Definition.Rename) and registering
// it under the new name.
package registry
