// Package main writes a development CA and server certificate for running
// the journal server over HTTPS.
//
//	go run ./tools/certgen -dir certs -hosts localhost,127.0.0.1
//	server -tls-cert certs/server.crt -tls-key certs/server.key
//	daybook --ca certs/ca.crt --server https://localhost:8080 ...
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/atinyakov/daybook/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := certgen.WriteBundle(*dir, splitHosts(*hosts)); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Certificates written to ./%s\n", *dir)
}

func splitHosts(s string) []string {
	var names []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			names = append(names, h)
		}
	}
	return names
}
