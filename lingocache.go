// Package lingocache provides the translation cache and offline-model
// store for client-side translation engines.
//
// Lingocache decides where a translation result comes from (hot memory,
// a persisted disk cache, or an installed offline rule model) and how
// results are retained, evicted, and persisted across process restarts.
// It does not translate by itself: a remote provider is plugged in and
// lingocache wraps it with two-tier caching and offline fallback.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/lingocache"
//	    "github.com/ZaguanLabs/lingocache/provider"
//	)
//
//	func main() {
//	    p := provider.NewOpenAIProvider(provider.OpenAIConfig{
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	    })
//
//	    svc, err := lingocache.New(p,
//	        lingocache.WithCacheDir("/var/cache/lingo"),
//	        lingocache.WithMaxCacheItems(1000),
//	        lingocache.WithOfflineMode(true),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    defer svc.Close()
//
//	    result, err := svc.Translate(context.Background(), "Hello", "en", "es")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(result) // Hola
//	}
package lingocache
