package datastore

import (
	"github.com/lib/pq"
)

// Default role given to users created without one.
const DefaultUserRole = "Basic"

type BlockSet struct {
	Id   int    `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null;uniqueIndex:idx_block_sets_name" json:"name"`

	Blocks []ExpansionBlock `gorm:"foreignKey:BlockSetId;constraint:OnDelete:CASCADE" json:"blocks,omitempty"`
}

type ExpansionBlock struct {
	Id         int    `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"not null" json:"name"`
	BlockSetId int    `gorm:"not null;index" json:"block_set_id"`

	Expansions []Expansion `gorm:"foreignKey:ExpansionBlockId;constraint:OnDelete:CASCADE" json:"expansions,omitempty"`
}

type Expansion struct {
	Id               int    `gorm:"primaryKey" json:"id"`
	Name             string `gorm:"not null;uniqueIndex:idx_expansions_name" json:"name"`
	ExpansionBlockId int    `gorm:"not null;index" json:"expansion_block_id"`

	Prints []CardPrint `gorm:"foreignKey:ExpansionId;constraint:OnDelete:CASCADE" json:"-"`
}

// Card is a printing-independent card definition. The list attributes are
// never NULL in the store; an absent list is stored as empty.
type Card struct {
	Id          int            `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;uniqueIndex:idx_cards_name" json:"name"`
	Category    *string        `json:"category,omitempty"`
	ManaCost    *int           `json:"mana_cost,omitempty"`
	Classes     pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"classes"`
	Types       pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"types"`
	AttackTypes pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"attack_types"`
	Legalities  pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"legalities"`

	Prints []CardPrint `gorm:"foreignKey:CardId;constraint:OnDelete:CASCADE" json:"prints,omitempty"`
}

type CardPrint struct {
	Id            int     `gorm:"primaryKey" json:"id"`
	CardId        int     `gorm:"not null;index" json:"card_id"`
	ExpansionId   int     `gorm:"not null;index" json:"expansion_id"`
	IdInExpansion int     `gorm:"not null" json:"id_in_expansion"`
	ImageFrontUrl string  `gorm:"not null" json:"image_front_url"`
	ImageBackUrl  *string `json:"image_back_url,omitempty"`
	Rules         *string `json:"rules,omitempty"`
	Rarity        string  `gorm:"not null" json:"rarity"`
}

type User struct {
	Id       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"not null;uniqueIndex:idx_users_username" json:"username"`
	Email    string `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	UserRole string `gorm:"not null;default:'Basic'" json:"user_role"`

	Collections []Collection `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE" json:"-"`
	Decks       []Deck       `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE" json:"-"`
}

type Collection struct {
	Id          int     `gorm:"primaryKey" json:"id"`
	UserId      int     `gorm:"not null;index" json:"user_id"`
	Name        string  `gorm:"not null" json:"name"`
	Description *string `json:"description,omitempty"`
}

type Deck struct {
	Id              int     `gorm:"primaryKey" json:"id"`
	UserId          int     `gorm:"not null;index" json:"user_id"`
	HeroCardPrintId int     `gorm:"not null;index" json:"hero_card_print_id"`
	Name            string  `gorm:"not null" json:"name"`
	Description     *string `json:"description,omitempty"`

	HeroCardPrint *CardPrint `gorm:"foreignKey:HeroCardPrintId;constraint:OnDelete:CASCADE" json:"-"`
}

// NewCard holds the attributes accepted by AddCard. Everything but Name is
// optional; nil lists are stored as empty.
type NewCard struct {
	Name        string
	Category    *string
	ManaCost    *int
	Classes     []string
	Types       []string
	AttackTypes []string
	Legalities  []string
}

// NewCardPrint holds the attributes accepted by AddCardPrint.
type NewCardPrint struct {
	CardId        int
	ExpansionId   int
	IdInExpansion int
	ImageFrontUrl string
	Rarity        string
	ImageBackUrl  *string
	Rules         *string
}

// RowCounts is the number of rows per entity kind.
type RowCounts struct {
	BlockSets       int64 `json:"block_sets"`
	ExpansionBlocks int64 `json:"expansion_blocks"`
	Expansions      int64 `json:"expansions"`
	Cards           int64 `json:"cards"`
	CardPrints      int64 `json:"card_prints"`
	Users           int64 `json:"users"`
	Collections     int64 `json:"collections"`
	Decks           int64 `json:"decks"`
}

// models lists every table in dependency order.
func models() []any {
	return []any{
		&BlockSet{},
		&ExpansionBlock{},
		&Expansion{},
		&Card{},
		&CardPrint{},
		&User{},
		&Collection{},
		&Deck{},
	}
}

func stringArray(values []string) pq.StringArray {
	if values == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(values)
}
