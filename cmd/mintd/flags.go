package main

import (
	"fmt"
	"time"

	"github.com/beastmint/mintd/internal/config"
	"github.com/urfave/cli/v2"
)

const (
	urlFlagName          = "url"
	promptFlagName       = "prompt"
	modelFlagName        = "model"
	nameFlagName         = "name"
	descriptionFlagName  = "description"
	ownerFlagName        = "owner"
	traitsFlagName       = "traits"
	requestIdFlagName    = "id"
	nftAddressFlagName   = "nft"
	toAddressFlagName    = "to"
	jettonAmountFlagName = "amount"

	timeout = 5 * time.Minute
)

var (
	urlFlag = &cli.StringFlag{
		Name:  urlFlagName,
		Usage: "the url where to reach mintd",
		Value: fmt.Sprintf("http://127.0.0.1:%d", config.DefaultPort),
	}
	promptFlag = &cli.StringFlag{
		Name:  promptFlagName,
		Usage: "custom prompt appended to the base prompt",
	}
	modelFlag = &cli.StringFlag{
		Name:  modelFlagName,
		Usage: "image generation model, defaults to the daemon one",
	}
	nameFlag = &cli.StringFlag{
		Name:  nameFlagName,
		Usage: "item name",
	}
	descriptionFlag = &cli.StringFlag{
		Name:  descriptionFlagName,
		Usage: "item description",
	}
	ownerFlag = &cli.StringFlag{
		Name:  ownerFlagName,
		Usage: "owner of the minted item, defaults to the daemon owner",
	}
	traitsFlag = &cli.StringFlag{
		Name:  traitsFlagName,
		Usage: "item traits as a json list of {trait_type, value, display_type}",
	}
	requestIdFlag = &cli.StringFlag{
		Name:     requestIdFlagName,
		Usage:    "mint request id",
		Required: true,
	}
	nftAddressFlag = &cli.StringFlag{
		Name:     nftAddressFlagName,
		Usage:    "address of the nft item to send",
		Required: true,
	}
	toAddressFlag = &cli.StringFlag{
		Name:     toAddressFlagName,
		Usage:    "destination address",
		Required: true,
	}
	jettonAmountFlag = &cli.StringFlag{
		Name:  jettonAmountFlagName,
		Usage: "amount of jettons in whole units, defaults to 1",
	}
)
