package fixture

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir string, name string, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadHierarchyKeepsFileOrder(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "expansions.json", `{
		"Zeta": {"Z2": ["z-b", "z-a"], "Z1": []},
		"Alpha": {"A1": ["a"]}
	}`)

	sets, err := LoadHierarchy(path)
	if err != nil {
		t.Fatalf("LoadHierarchy returned error: %v", err)
	}
	if len(sets) != 2 || sets[0].Name != "Zeta" || sets[1].Name != "Alpha" {
		t.Fatalf("expected [Zeta Alpha], got %+v", sets)
	}
	if sets[0].Blocks[0].Name != "Z2" || sets[0].Blocks[1].Name != "Z1" {
		t.Fatalf("expected blocks [Z2 Z1], got %+v", sets[0].Blocks)
	}
	if got := strings.Join(sets[0].Blocks[0].Expansions, ","); got != "z-b,z-a" {
		t.Fatalf("expected expansions z-b,z-a, got %s", got)
	}
	if len(sets[0].Blocks[1].Expansions) != 0 {
		t.Fatalf("expected empty block Z1, got %v", sets[0].Blocks[1].Expansions)
	}
}

func TestLoadHierarchyErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"Set A": `},
		{"not an object", `["Set A"]`},
		{"block not an object", `{"Set A": ["Block 1"]}`},
		{"expansions not a list", `{"Set A": {"Block 1": "Exp 1"}}`},
		{"expansion not a string", `{"Set A": {"Block 1": [1]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, t.TempDir(), "expansions.json", tt.body)
			_, err := LoadHierarchy(path)
			if !errors.Is(err, ErrFixtureMalformed) {
				t.Fatalf("expected ErrFixtureMalformed, got %v", err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadHierarchy(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrFixtureNotFound) {
		t.Fatalf("expected ErrFixtureNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "nope.json") {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestLoadCards(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "cards.json", `{
		"Sword of Ages": {"card_category": "Weapon", "card_mana_cost": 4, "card_classes": ["Warrior"],
			"card_types": ["Sword"], "card_attack_type": ["Melee"], "card_legalities": ["Core"]},
		"Arcane Intellect": {"card_category": "Ability"}
	}`)

	cards, err := LoadCards(path)
	if err != nil {
		t.Fatalf("LoadCards returned error: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	sword := cards[0]
	if sword.Name != "Sword of Ages" || *sword.Category != "Weapon" || *sword.ManaCost != 4 {
		t.Fatalf("unexpected first card: %+v", sword)
	}
	if sword.AttackTypes[0] != "Melee" || sword.Legalities[0] != "Core" {
		t.Fatalf("unexpected list attributes: %+v", sword)
	}
	ai := cards[1]
	if ai.Name != "Arcane Intellect" || ai.ManaCost != nil || ai.Classes != nil {
		t.Fatalf("unexpected second card: %+v", ai)
	}
}

func TestLoadCardsWrongType(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "cards.json", `{"Bad": {"card_mana_cost": "three"}}`)
	_, err := LoadCards(path)
	if !errors.Is(err, ErrFixtureMalformed) {
		t.Fatalf("expected ErrFixtureMalformed, got %v", err)
	}
}

func TestLoadPrints(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "prints.json", `[
		{"card_name": "Sword of Ages", "card_print_expansion_name": "Heroes of Azeroth",
		 "card_print_rarity": "Epic", "card_print_id_in_expansion": 12,
		 "card_print_image_front_url": "https://img.example/12.png", "card_print_rules": "Equip 2"}
	]`)

	prints, err := LoadPrints(path)
	if err != nil {
		t.Fatalf("LoadPrints returned error: %v", err)
	}
	if len(prints) != 1 {
		t.Fatalf("expected 1 print, got %d", len(prints))
	}
	p := prints[0]
	if p.CardName != "Sword of Ages" || p.ExpansionName != "Heroes of Azeroth" || p.IdInExpansion != 12 {
		t.Fatalf("unexpected print: %+v", p)
	}
	if p.ImageBackUrl != nil || p.Rules == nil || *p.Rules != "Equip 2" {
		t.Fatalf("unexpected optional fields: %+v", p)
	}
}

func TestLoadSkipsEmptyPaths(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "expansions.json", `{"Set A": {"Block 1": ["Exp 1", "Exp 2"]}}`)

	cat, err := Load(path, "", "")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	sets, blocks, exps := cat.Tally()
	if sets != 1 || blocks != 1 || exps != 2 {
		t.Fatalf("expected 1/1/2, got %d/%d/%d", sets, blocks, exps)
	}
	if cat.Cards != nil || cat.Prints != nil {
		t.Fatal("expected no cards or prints")
	}
}

func TestLoadMissingPrints(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "expansions.json", `{}`)

	_, err := Load(path, "", filepath.Join(dir, "prints.json"))
	if !errors.Is(err, ErrFixtureNotFound) {
		t.Fatalf("expected ErrFixtureNotFound, got %v", err)
	}
}
