// Package fixture reads the JSON catalog files consumed by the importer.
//
// The hierarchy and card fixtures are JSON objects whose key order is the
// import order, so they are walked with gjson instead of being decoded into
// Go maps.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tidwall/gjson"
)

var (
	ErrFixtureNotFound  = errors.New("fixture not found")
	ErrFixtureMalformed = errors.New("fixture malformed")
)

// BlockSet is one top-level entry of the hierarchy fixture.
type BlockSet struct {
	Name   string
	Blocks []ExpansionBlock
}

type ExpansionBlock struct {
	Name       string
	Expansions []string
}

// Card is one entry of the card fixture. Name comes from the object key.
type Card struct {
	Name        string   `json:"-"`
	Category    *string  `json:"card_category"`
	ManaCost    *int     `json:"card_mana_cost"`
	Classes     []string `json:"card_classes"`
	Types       []string `json:"card_types"`
	AttackTypes []string `json:"card_attack_type"`
	Legalities  []string `json:"card_legalities"`
}

type CardPrint struct {
	CardName      string  `json:"card_name"`
	ExpansionName string  `json:"card_print_expansion_name"`
	Rarity        string  `json:"card_print_rarity"`
	IdInExpansion int     `json:"card_print_id_in_expansion"`
	ImageFrontUrl string  `json:"card_print_image_front_url"`
	ImageBackUrl  *string `json:"card_print_image_back_url"`
	Rules         *string `json:"card_print_rules"`
}

// Catalog is everything loaded from the three fixtures.
type Catalog struct {
	BlockSets []BlockSet
	Cards     []Card
	Prints    []CardPrint
}

// Tally returns the number of block sets, expansion blocks and expansions.
func (c *Catalog) Tally() (sets int, blocks int, expansions int) {
	for _, bs := range c.BlockSets {
		sets++
		for _, b := range bs.Blocks {
			blocks++
			expansions += len(b.Expansions)
		}
	}
	return sets, blocks, expansions
}

// Load reads all fixtures. An empty cardsPath or printsPath leaves that part
// of the catalog empty; any other missing file is an error.
func Load(hierarchyPath string, cardsPath string, printsPath string) (*Catalog, error) {
	var cat Catalog
	var err error

	if cat.BlockSets, err = LoadHierarchy(hierarchyPath); err != nil {
		return nil, err
	}
	if cardsPath != "" {
		if cat.Cards, err = LoadCards(cardsPath); err != nil {
			return nil, err
		}
	}
	if printsPath != "" {
		if cat.Prints, err = LoadPrints(printsPath); err != nil {
			return nil, err
		}
	}
	return &cat, nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFixtureNotFound, path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func malformed(path string, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrFixtureMalformed, path, fmt.Sprintf(format, args...))
}

// LoadHierarchy reads {"set": {"block": ["expansion", ...]}}.
func LoadHierarchy(path string) ([]BlockSet, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, malformed(path, "invalid json")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, malformed(path, "expected an object of block sets")
	}

	var sets []BlockSet
	root.ForEach(func(setKey, setVal gjson.Result) bool {
		if !setVal.IsObject() {
			err = malformed(path, "block set %q: expected an object of expansion blocks", setKey.String())
			return false
		}
		bs := BlockSet{Name: setKey.String()}
		setVal.ForEach(func(blockKey, blockVal gjson.Result) bool {
			if !blockVal.IsArray() {
				err = malformed(path, "expansion block %q: expected a list of expansions", blockKey.String())
				return false
			}
			block := ExpansionBlock{Name: blockKey.String()}
			for _, exp := range blockVal.Array() {
				if exp.Type != gjson.String {
					err = malformed(path, "expansion block %q: expansion names must be strings", blockKey.String())
					return false
				}
				block.Expansions = append(block.Expansions, exp.String())
			}
			bs.Blocks = append(bs.Blocks, block)
			return true
		})
		if err != nil {
			return false
		}
		sets = append(sets, bs)
		return true
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}

// LoadCards reads {"card name": {"card_category": ..., ...}}.
func LoadCards(path string) ([]Card, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, malformed(path, "invalid json")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, malformed(path, "expected an object of cards")
	}

	var cards []Card
	root.ForEach(func(key, val gjson.Result) bool {
		var c Card
		if !val.IsObject() {
			err = malformed(path, "card %q: expected an object", key.String())
			return false
		}
		if uerr := json.Unmarshal([]byte(val.Raw), &c); uerr != nil {
			err = malformed(path, "card %q: %v", key.String(), uerr)
			return false
		}
		c.Name = key.String()
		cards = append(cards, c)
		return true
	})
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// LoadPrints reads a list of card print records.
func LoadPrints(path string) ([]CardPrint, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var prints []CardPrint
	if err := json.Unmarshal(data, &prints); err != nil {
		return nil, malformed(path, "%v", err)
	}
	return prints, nil
}
