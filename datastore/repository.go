package datastore

import (
	"context"
	"strconv"

	"gorm.io/gorm"
)

// PostgresDataStore is the persistence gateway. Each method acquires its own
// connection, runs a single statement and releases the connection.
type PostgresDataStore struct {
	conn Connector
}

func (r *PostgresDataStore) AddBlockSet(ctx context.Context, name string) (*BlockSet, error) {
	bs := BlockSet{Name: name}
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Create(&bs).Error
	})
	if err != nil {
		return nil, classify("add block set", name, err)
	}
	return &bs, nil
}

func (r *PostgresDataStore) AddExpansionBlock(ctx context.Context, name string, blockSetId int) (*ExpansionBlock, error) {
	eb := ExpansionBlock{Name: name, BlockSetId: blockSetId}
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Create(&eb).Error
	})
	if err != nil {
		return nil, classify("add expansion block", name, err)
	}
	return &eb, nil
}

func (r *PostgresDataStore) AddExpansion(ctx context.Context, name string, expansionBlockId int) (*Expansion, error) {
	exp := Expansion{Name: name, ExpansionBlockId: expansionBlockId}
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Create(&exp).Error
	})
	if err != nil {
		return nil, classify("add expansion", name, err)
	}
	return &exp, nil
}

func (r *PostgresDataStore) AddCard(ctx context.Context, nc NewCard) (*Card, error) {
	card := Card{
		Name:        nc.Name,
		Category:    nc.Category,
		ManaCost:    nc.ManaCost,
		Classes:     stringArray(nc.Classes),
		Types:       stringArray(nc.Types),
		AttackTypes: stringArray(nc.AttackTypes),
		Legalities:  stringArray(nc.Legalities),
	}
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Create(&card).Error
	})
	if err != nil {
		return nil, classify("add card", nc.Name, err)
	}
	return &card, nil
}

func (r *PostgresDataStore) AddCardPrint(ctx context.Context, np NewCardPrint) (*CardPrint, error) {
	cp := CardPrint{
		CardId:        np.CardId,
		ExpansionId:   np.ExpansionId,
		IdInExpansion: np.IdInExpansion,
		ImageFrontUrl: np.ImageFrontUrl,
		ImageBackUrl:  np.ImageBackUrl,
		Rules:         np.Rules,
		Rarity:        np.Rarity,
	}
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Create(&cp).Error
	})
	if err != nil {
		record := strconv.Itoa(np.CardId) + "/" + strconv.Itoa(np.ExpansionId) + "#" + strconv.Itoa(np.IdInExpansion)
		return nil, classify("add card print", record, err)
	}
	return &cp, nil
}

func (r *PostgresDataStore) AddUser(ctx context.Context, username string, email string, role string) (*User, error) {
	if role == "" {
		role = DefaultUserRole
	}
	u := User{Username: username, Email: email, UserRole: role}
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Create(&u).Error
	})
	if err != nil {
		return nil, classify("add user", username, err)
	}
	return &u, nil
}

func (r *PostgresDataStore) AddCollection(ctx context.Context, userId int, name string, description *string) (*Collection, error) {
	c := Collection{UserId: userId, Name: name, Description: description}
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Create(&c).Error
	})
	if err != nil {
		return nil, classify("add collection", name, err)
	}
	return &c, nil
}

func (r *PostgresDataStore) AddDeck(ctx context.Context, userId int, heroCardPrintId int, name string, description *string) (*Deck, error) {
	d := Deck{UserId: userId, HeroCardPrintId: heroCardPrintId, Name: name, Description: description}
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Create(&d).Error
	})
	if err != nil {
		return nil, classify("add deck", name, err)
	}
	return &d, nil
}

// deleteAll removes every row of model's table and returns how many went.
func (r *PostgresDataStore) deleteAll(ctx context.Context, op string, model any) (int64, error) {
	var n int64
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		res := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model)
		n = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, classify(op, "", err)
	}
	return n, nil
}

func (r *PostgresDataStore) DeleteAllBlockSets(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, "delete all block sets", &BlockSet{})
}

func (r *PostgresDataStore) DeleteAllExpansionBlocks(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, "delete all expansion blocks", &ExpansionBlock{})
}

func (r *PostgresDataStore) DeleteAllExpansions(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, "delete all expansions", &Expansion{})
}

func (r *PostgresDataStore) DeleteAllCards(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, "delete all cards", &Card{})
}

func (r *PostgresDataStore) DeleteAllCardPrints(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, "delete all card prints", &CardPrint{})
}

func (r *PostgresDataStore) DeleteAllUsers(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, "delete all users", &User{})
}

func (r *PostgresDataStore) DeleteAllCollections(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, "delete all collections", &Collection{})
}

func (r *PostgresDataStore) DeleteAllDecks(ctx context.Context) (int64, error) {
	return r.deleteAll(ctx, "delete all decks", &Deck{})
}

func (r *PostgresDataStore) FindCardByName(ctx context.Context, name string) (*Card, error) {
	var card Card
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Where("name = ?", name).Take(&card).Error
	})
	if err != nil {
		return nil, classify("find card", name, err)
	}
	return &card, nil
}

func (r *PostgresDataStore) FindExpansionByName(ctx context.Context, name string) (*Expansion, error) {
	var exp Expansion
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Where("name = ?", name).Take(&exp).Error
	})
	if err != nil {
		return nil, classify("find expansion", name, err)
	}
	return &exp, nil
}

// ListBlockSets returns every block set with its blocks and their expansions.
func (r *PostgresDataStore) ListBlockSets(ctx context.Context) ([]BlockSet, error) {
	var sets []BlockSet
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.
			Preload("Blocks", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Preload("Blocks.Expansions", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
			Order("id ASC").
			Find(&sets).Error
	})
	if err != nil {
		return nil, classify("list block sets", "", err)
	}
	return sets, nil
}

func (r *PostgresDataStore) ListCardPrints(ctx context.Context, cardId int) ([]CardPrint, error) {
	var prints []CardPrint
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		return db.Where("card_id = ?", cardId).Order("expansion_id ASC, id_in_expansion ASC").Find(&prints).Error
	})
	if err != nil {
		return nil, classify("list card prints", strconv.Itoa(cardId), err)
	}
	return prints, nil
}

// CountRows counts the rows of every table over a single connection.
func (r *PostgresDataStore) CountRows(ctx context.Context) (RowCounts, error) {
	var rc RowCounts
	err := r.conn.WithConn(ctx, func(db *gorm.DB) error {
		targets := []struct {
			model any
			n     *int64
		}{
			{&BlockSet{}, &rc.BlockSets},
			{&ExpansionBlock{}, &rc.ExpansionBlocks},
			{&Expansion{}, &rc.Expansions},
			{&Card{}, &rc.Cards},
			{&CardPrint{}, &rc.CardPrints},
			{&User{}, &rc.Users},
			{&Collection{}, &rc.Collections},
			{&Deck{}, &rc.Decks},
		}
		for _, t := range targets {
			if err := db.Model(t.model).Count(t.n).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return RowCounts{}, classify("count rows", "", err)
	}
	return rc, nil
}
