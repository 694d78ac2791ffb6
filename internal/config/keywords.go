package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/advancementhq/feedback-pipeline/internal/core/textsignal"
)

// keywordsFile mirrors the optional YAML vocabulary override. Absent
// sections keep the built-in term lists; present sections replace them
// wholesale.
type keywordsFile struct {
	Filter struct {
		AddressUpdates  []string `yaml:"address_updates"`
		AdminUpdates    []string `yaml:"admin_updates"`
		ForwardedChains []string `yaml:"forwarded_chains"`
		GenericAcks     []string `yaml:"generic_acks"`
		ParentPositive  []string `yaml:"parent_positive"`
		TechSupport     []string `yaml:"tech_support"`
		EventInquiries  []string `yaml:"event_inquiries"`
	} `yaml:"filter"`
	Feedback []string `yaml:"feedback"`
	Negative []string `yaml:"negative"`

	GiveFunds     []string `yaml:"give_funds"`
	WithdrawFunds []string `yaml:"withdraw_funds"`

	PausedGiving   []string `yaml:"paused_giving"`
	ResumedGiving  []string `yaml:"resumed_giving"`
	RemovedBequest []string `yaml:"removed_bequest"`
	AddedBequest   []string `yaml:"added_bequest"`
	MakingGift     []string `yaml:"making_gift"`

	EstateWords []string `yaml:"estate_words"`
}

// LoadVocabulary returns the built-in vocabulary, with term lists
// replaced by any the YAML file at path provides. An empty path means
// defaults only.
func LoadVocabulary(path string) (textsignal.Vocabulary, error) {
	vocab := textsignal.DefaultVocabulary()
	if path == "" {
		return vocab, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return vocab, fmt.Errorf("read keywords file: %w", err)
	}
	var file keywordsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return vocab, fmt.Errorf("parse keywords file: %w", err)
	}

	overrideFilter(vocab.Filter, textsignal.AddressUpdates, file.Filter.AddressUpdates)
	overrideFilter(vocab.Filter, textsignal.AdminUpdates, file.Filter.AdminUpdates)
	overrideFilter(vocab.Filter, textsignal.ForwardedChains, file.Filter.ForwardedChains)
	overrideFilter(vocab.Filter, textsignal.GenericAcks, file.Filter.GenericAcks)
	overrideFilter(vocab.Filter, textsignal.ParentPositiveOnly, file.Filter.ParentPositive)
	overrideFilter(vocab.Filter, textsignal.TechnicalSupport, file.Filter.TechSupport)
	overrideFilter(vocab.Filter, textsignal.EventInquiries, file.Filter.EventInquiries)

	override(&vocab.Feedback, file.Feedback)
	override(&vocab.Negative, file.Negative)
	override(&vocab.GiveFunds, file.GiveFunds)
	override(&vocab.WithdrawFunds, file.WithdrawFunds)
	override(&vocab.PausedGiving, file.PausedGiving)
	override(&vocab.ResumedGiving, file.ResumedGiving)
	override(&vocab.RemovedBequest, file.RemovedBequest)
	override(&vocab.AddedBequest, file.AddedBequest)
	override(&vocab.MakingGift, file.MakingGift)
	override(&vocab.EstateWords, file.EstateWords)

	return vocab, nil
}

func override(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

func overrideFilter(filter map[textsignal.FilterCategory][]string, category textsignal.FilterCategory, src []string) {
	if len(src) > 0 {
		filter[category] = src
	}
}
