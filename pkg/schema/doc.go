// Package schema loads form definitions from YAML or JSON documents stored on
// disk, inside an fs.FS or behind an HTTP(S) URL, and keeps them in a
// Registry keyed by form id.
package schema
