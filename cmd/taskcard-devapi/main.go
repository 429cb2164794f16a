// Package main runs the development list/task API.
//
// Usage:
//
//	taskcard-devapi                        serve on DEVAPI_ADDR (default :1009)
//	taskcard-devapi token [-ttl d] <user>  print a bearer token for user
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"taskcard/internal/devapi"
)

func main() {
	cfg, err := devapi.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	if len(os.Args) > 1 && os.Args[1] == "token" {
		os.Exit(printToken(cfg, os.Args[2:]))
	}

	store, err := devapi.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open %s: %v", cfg.DBPath, err)
	}
	defer store.Close()

	gin.SetMode(gin.ReleaseMode)
	router := devapi.NewRouter(store, []byte(cfg.JWTKey), log.Default())

	log.Printf("listening on %s (db %s)", cfg.Addr, cfg.DBPath)
	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

func printToken(cfg *devapi.Config, args []string) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	ttl := fs.Duration("ttl", 30*24*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: taskcard-devapi token [-ttl duration] <user>")
		return 1
	}

	token, err := devapi.IssueToken([]byte(cfg.JWTKey), fs.Arg(0), *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(token)
	return 0
}
