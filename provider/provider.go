// Package provider defines remote translation backends and the
// middleware (retry, rate limiting) that wraps them.
package provider

import "github.com/ZaguanLabs/lingocache"

// Provider is the interface for remote translation backends.
// This is an alias to the main package interface for convenience.
type Provider = lingocache.Provider

// Downloader is an alias to the main package model downloader interface.
type Downloader = lingocache.Downloader
