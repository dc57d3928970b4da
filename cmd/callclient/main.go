package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// callclient posts a recorded call to a running call-analysis service and
// prints the JSON analysis.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "base URL of the call analysis service")
	timeout := flag.Duration("timeout", 3*time.Minute, "request timeout")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: callclient [-addr url] [-timeout d] <file.wav|file.mp3>")
	}
	path := flag.Arg(0)

	audio, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read audio file: %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("audio", filepath.Base(path))
	if err != nil {
		log.Fatalf("failed to build request: %v", err)
	}
	if _, err := fw.Write(audio); err != nil {
		log.Fatalf("failed to build request: %v", err)
	}
	if err := mw.Close(); err != nil {
		log.Fatalf("failed to build request: %v", err)
	}

	log.Printf("Analyzing %s (%d bytes)", filepath.Base(path), len(audio))

	client := &http.Client{Timeout: *timeout}
	resp, err := client.Post(*addr+"/api/analyze", mw.FormDataContentType(), &buf)
	if err != nil {
		log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("analysis failed (%s): %s", resp.Status, body)
	}

	fmt.Println(string(body))
}
