// Package appfs holds the files embedded in the binaries: SQL migrations & email templates.
package appfs

import "embed"

//go:embed migrations/*.sql assets/templates/email/*
var FS embed.FS
