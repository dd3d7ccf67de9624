package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet and the splash and
// location helper script).
//
//go:embed static/*
var StaticFS embed.FS
