package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

// getURL prefers the flag, then MINTD_URL, then the flag default.
func getURL(ctx *cli.Context) string {
	if !ctx.IsSet(urlFlagName) {
		if url := viper.GetString(urlFlagName); url != "" {
			return strings.TrimRight(url, "/")
		}
	}
	return strings.TrimRight(ctx.String(urlFlagName), "/")
}

func printJSON(resp any) error {
	jsonBytes, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonBytes))
	return nil
}

func post[T any](url, body, key string) (result T, err error) {
	req, err := http.NewRequest("POST", url, strings.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Add("Content-Type", "application/json")
	return do[T](req, key, "failed to post")
}

func get[T any](url, key string) (result T, err error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return
	}
	req.Header.Add("Content-Type", "application/json")
	return do[T](req, key, "failed to get")
}

func do[T any](req *http.Request, key, errPrefix string) (result T, err error) {
	client := &http.Client{
		Timeout: timeout,
	}

	resp, err := client.Do(req)
	if err != nil {
		return
	}
	// nolint
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("%s: %s", errPrefix, strings.TrimSpace(string(buf)))
		return
	}
	if key == "" {
		var res T
		if err = json.Unmarshal(buf, &res); err != nil {
			return
		}
		result = res
		return
	}
	res := make(map[string]json.RawMessage)
	if err = json.Unmarshal(buf, &res); err != nil {
		return
	}
	raw, ok := res[key]
	if !ok {
		err = fmt.Errorf("missing %s in response", key)
		return
	}

	err = json.Unmarshal(raw, &result)
	return
}
