package ui

import (
	"ragchat/model"
	"ragchat/provider"
)

// Message type aliases - these are defined in the model package
type queryDoneMsg = model.QueryDoneMsg
type capabilityProbedMsg = model.CapabilityProbedMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
type configSavedMsg = model.ConfigSavedMsg
type flashTickMsg = model.FlashTickMsg
type modelsFetchedMsg = provider.ModelsFetchedMsg
