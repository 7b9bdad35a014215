// Package client provides a Go client for pb paste services (https://pybin.pw).
//
// # Installation
//
//	go get github.com/tombowditch/ptpb/client
//
// # Quick Start
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//
//		"github.com/tombowditch/ptpb/client"
//	)
//
//	func main() {
//		c := client.New()
//
//		// Create a paste
//		meta, err := c.Create(context.Background(), client.Bytes([]byte("Hello, World!")), client.PasteOptions{})
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println("Paste URL:", meta.GetString("url"))
//
//		// Delete it again using the uuid from the create response
//		meta, err = c.Delete(context.Background(), meta.GetString("uuid"))
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println("Status:", meta.GetString("status"))
//	}
//
// # Options
//
//	meta, err := c.Create(ctx, content, client.PasteOptions{
//		Label:       "notes",      // POST /~notes
//		Private:     true,         // p=1
//		Sunset:      3600,         // expire after an hour
//		FileName:    "notes.md",
//		ContentType: "text/markdown",
//	})
//
// # Streaming Files
//
//	f, err := os.Open("big.log")
//	if err != nil {
//		log.Fatal(err)
//	}
//	content := client.Stream(f, "big.log")
//	defer content.Close()
//	meta, err := c.Create(ctx, content, client.PasteOptions{})
//
// # Error Handling
//
// pb reports failures such as a missing paste in a normal YAML body with a
// 4xx status. Those responses are decoded and returned as Metadata, not as
// errors:
//
//	meta, err := c.Delete(ctx, uuid)
//	if client.IsTransport(err) {
//		// Network failure, nothing reached the server
//	}
//	if meta.GetString("status") != "deleted" {
//		// The server refused; meta says why
//	}
//
// A body that is valid YAML but not a mapping, such as a proxy's plain
// "Not Found" page, comes back in Metadata.Value. Only malformed YAML is an
// ErrDecode error.
//
// Use WithHTTPErrors(true) to get an *Error with code ErrStatus instead.
package client
