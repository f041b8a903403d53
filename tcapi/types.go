package tcapi

import (
	"github.com/gurbos/tcgtracker/datastore"
)

/*-------------------------------------------------------------------------------------------------*/

type BlockSet struct {
	Id     int              `json:"id"`
	Name   string           `json:"name"`
	Blocks []ExpansionBlock `json:"blocks"`
}

type ExpansionBlock struct {
	Id         int         `json:"id"`
	Name       string      `json:"name"`
	Expansions []Expansion `json:"expansions"`
}

type Expansion struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

/*-------------------------------------------------------------------------------------------------*/

type Card struct {
	Id          int         `json:"id"`
	Name        string      `json:"name"`
	Category    *string     `json:"category"`
	ManaCost    *int        `json:"mana_cost"`
	Classes     []string    `json:"classes"`
	Types       []string    `json:"types"`
	AttackTypes []string    `json:"attack_types"`
	Legalities  []string    `json:"legalities"`
	Prints      []CardPrint `json:"prints"`
}

type CardPrint struct {
	Id            int     `json:"id"`
	ExpansionId   int     `json:"expansion_id"`
	IdInExpansion int     `json:"id_in_expansion"`
	Rarity        string  `json:"rarity"`
	ImageFrontUrl string  `json:"image_front_url"`
	ImageBackUrl  *string `json:"image_back_url"`
	Rules         *string `json:"rules"`
}

/*-------------------------------------------------------------------------------------------------*/

// toBlockSets converts the stored hierarchy into response types. Empty lists
// are kept as [] rather than null.
func toBlockSets(sets []datastore.BlockSet) []BlockSet {
	out := make([]BlockSet, len(sets))
	for i, bs := range sets {
		out[i] = BlockSet{Id: bs.Id, Name: bs.Name, Blocks: make([]ExpansionBlock, len(bs.Blocks))}
		for j, eb := range bs.Blocks {
			block := ExpansionBlock{Id: eb.Id, Name: eb.Name, Expansions: make([]Expansion, len(eb.Expansions))}
			for k, exp := range eb.Expansions {
				block.Expansions[k] = Expansion{Id: exp.Id, Name: exp.Name}
			}
			out[i].Blocks[j] = block
		}
	}
	return out
}

func toCard(card *datastore.Card, prints []datastore.CardPrint) Card {
	out := Card{
		Id:          card.Id,
		Name:        card.Name,
		Category:    card.Category,
		ManaCost:    card.ManaCost,
		Classes:     nonNil(card.Classes),
		Types:       nonNil(card.Types),
		AttackTypes: nonNil(card.AttackTypes),
		Legalities:  nonNil(card.Legalities),
		Prints:      make([]CardPrint, len(prints)),
	}
	for i, cp := range prints {
		out.Prints[i] = CardPrint{
			Id:            cp.Id,
			ExpansionId:   cp.ExpansionId,
			IdInExpansion: cp.IdInExpansion,
			Rarity:        cp.Rarity,
			ImageFrontUrl: cp.ImageFrontUrl,
			ImageBackUrl:  cp.ImageBackUrl,
			Rules:         cp.Rules,
		}
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
