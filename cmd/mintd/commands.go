package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

var (
	configCmd = &cli.Command{
		Name:   "config",
		Usage:  "Show the daemon the cli talks to",
		Flags:  []cli.Flag{urlFlag},
		Action: configAction,
	}
	mintCmd = &cli.Command{
		Name:  "mint",
		Usage: "Generate an image, publish it and request a mint",
		Flags: []cli.Flag{
			urlFlag, promptFlag, modelFlag, nameFlag, descriptionFlag, ownerFlag, traitsFlag,
		},
		Action: mintAction,
	}
	statusCmd = &cli.Command{
		Name:   "status",
		Usage:  "Query the marketplace status of a mint request",
		Flags:  []cli.Flag{urlFlag, requestIdFlag},
		Action: statusAction,
	}
	recordCmd = &cli.Command{
		Name:   "record",
		Usage:  "Show the stored record of a mint request",
		Flags:  []cli.Flag{urlFlag, requestIdFlag},
		Action: recordAction,
	}
	refreshCmd = &cli.Command{
		Name:   "refresh",
		Usage:  "Reconcile a mint record with the marketplace status",
		Flags:  []cli.Flag{urlFlag, requestIdFlag},
		Action: refreshAction,
	}
	sendNftCmd = &cli.Command{
		Name:   "send-nft",
		Usage:  "Transfer an nft item owned by the daemon wallet",
		Flags:  []cli.Flag{urlFlag, nftAddressFlag, toAddressFlag},
		Action: sendNftAction,
	}
	sendJettonCmd = &cli.Command{
		Name:   "send-jetton",
		Usage:  "Transfer jettons from the daemon wallet",
		Flags:  []cli.Flag{urlFlag, toAddressFlag, jettonAmountFlag},
		Action: sendJettonAction,
	}
	walletCmd = &cli.Command{
		Name:   "wallet",
		Usage:  "Show address, balance and seqno of the daemon wallet",
		Flags:  []cli.Flag{urlFlag},
		Action: walletAction,
	}
)

func configAction(ctx *cli.Context) error {
	baseURL := getURL(ctx)
	version, err := get[string](fmt.Sprintf("%s/healthz", baseURL), "version")
	if err != nil {
		return err
	}
	return printJSON(map[string]string{
		"url":     baseURL,
		"version": version,
	})
}

func mintAction(ctx *cli.Context) error {
	body := map[string]any{
		"prompt":       ctx.String(promptFlagName),
		"model":        ctx.String(modelFlagName),
		"name":         ctx.String(nameFlagName),
		"description":  ctx.String(descriptionFlagName),
		"ownerAddress": ctx.String(ownerFlagName),
	}
	if traits := ctx.String(traitsFlagName); traits != "" {
		var parsed []map[string]any
		if err := json.Unmarshal([]byte(traits), &parsed); err != nil {
			return fmt.Errorf("invalid traits: %s", err)
		}
		body["traits"] = parsed
	}
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/mint", getURL(ctx))
	res, err := post[map[string]any](url, string(buf), "")
	if err != nil {
		return err
	}
	return printJSON(res)
}

func statusAction(ctx *cli.Context) error {
	url := fmt.Sprintf(
		"%s/api/mint/status/%s", getURL(ctx), ctx.String(requestIdFlagName),
	)
	res, err := get[map[string]any](url, "")
	if err != nil {
		return err
	}
	return printJSON(res)
}

func recordAction(ctx *cli.Context) error {
	url := fmt.Sprintf(
		"%s/api/mint/records/%s", getURL(ctx), ctx.String(requestIdFlagName),
	)
	res, err := get[map[string]any](url, "record")
	if err != nil {
		return err
	}
	return printJSON(res)
}

func refreshAction(ctx *cli.Context) error {
	url := fmt.Sprintf(
		"%s/api/mint/status/%s/refresh", getURL(ctx), ctx.String(requestIdFlagName),
	)
	res, err := post[map[string]any](url, "", "record")
	if err != nil {
		return err
	}
	return printJSON(res)
}

func sendNftAction(ctx *cli.Context) error {
	body := fmt.Sprintf(
		`{"nftAddress": %q, "toAddress": %q}`,
		ctx.String(nftAddressFlagName), ctx.String(toAddressFlagName),
	)
	url := fmt.Sprintf("%s/api/send", getURL(ctx))
	res, err := post[map[string]any](url, body, "")
	if err != nil {
		return err
	}
	return printJSON(res)
}

func sendJettonAction(ctx *cli.Context) error {
	body := fmt.Sprintf(
		`{"toAddress": %q, "amount": %q}`,
		ctx.String(toAddressFlagName), strings.TrimSpace(ctx.String(jettonAmountFlagName)),
	)
	url := fmt.Sprintf("%s/api/send/rise", getURL(ctx))
	res, err := post[map[string]any](url, body, "")
	if err != nil {
		return err
	}
	return printJSON(res)
}

func walletAction(ctx *cli.Context) error {
	url := fmt.Sprintf("%s/api/wallet", getURL(ctx))
	res, err := get[map[string]any](url, "")
	if err != nil {
		return err
	}
	return printJSON(res)
}
