// iotctl is a small operator tool against a running server: mint a
// provisioning token for a board, or list an account's outputs.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

const usage = "usage: iotctl provision --base-url <url> --jwt <token> --device <id> | iotctl outputs --base-url <url> --jwt <token>"

func main() {
	if len(os.Args) < 2 {
		fail(usage)
	}
	switch os.Args[1] {
	case "provision":
		runProvision(os.Args[2:])
	case "outputs":
		runOutputs(os.Args[2:])
	default:
		fail(usage)
	}
}

func runProvision(args []string) {
	fs := flag.NewFlagSet("provision", flag.ExitOnError)
	fs.SetOutput(os.Stderr)
	baseURL := fs.String("base-url", "http://localhost:5000", "server base url")
	jwt := fs.String("jwt", "", "dashboard session token")
	device := fs.String("device", "", "device identifier")
	_ = fs.Parse(args)
	if *jwt == "" || *device == "" {
		fail(usage)
	}
	body, _ := json.Marshal(map[string]any{"device_id": *device})
	printResponse(authedPost(*baseURL+"/request-provision", *jwt, body))
}

func runOutputs(args []string) {
	fs := flag.NewFlagSet("outputs", flag.ExitOnError)
	fs.SetOutput(os.Stderr)
	baseURL := fs.String("base-url", "http://localhost:5000", "server base url")
	jwt := fs.String("jwt", "", "dashboard session token")
	_ = fs.Parse(args)
	if *jwt == "" {
		fail(usage)
	}
	req, _ := http.NewRequest(http.MethodGet, *baseURL+"/my-devices", nil)
	req.Header.Set("Authorization", "Bearer "+*jwt)
	printResponse(client().Do(req))
}

func authedPost(url, jwt string, body []byte) (*http.Response, error) {
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+jwt)
	req.Header.Set("content-type", "application/json")
	return client().Do(req)
}

func client() *http.Client { return &http.Client{Timeout: 15 * time.Second} }

func printResponse(resp *http.Response, err error) {
	if err != nil {
		fail(err.Error())
	}
	defer resp.Body.Close()
	var v any
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		fail("bad response: " + err.Error())
	}
	out, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(out))
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
