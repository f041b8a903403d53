package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gurbos/tcgtracker/datastore"
)

// fakeStore keeps rows in memory and enforces the same unique and foreign
// key rules as the schema, including the cascading deletes.
type fakeStore struct {
	nextId     int
	blockSets  []datastore.BlockSet
	blocks     []datastore.ExpansionBlock
	expansions []datastore.Expansion
	cards      []datastore.Card
	prints     []datastore.CardPrint

	calls     int
	mutations int
	ops       map[string]int

	// failOn makes the named operation return a connection failure.
	failOn string
	// blockOn makes the named operation wait until ctx is done.
	blockOn string
	// invalid lists record names the store refuses to write as bad data.
	invalid map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{ops: map[string]int{}, invalid: map[string]bool{}}
}

func (f *fakeStore) id() int {
	f.nextId++
	return f.nextId
}

func (f *fakeStore) enter(ctx context.Context, op string, record string) error {
	f.calls++
	f.ops[op]++
	if f.blockOn == op {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return &datastore.OpError{Op: op, Record: record, Kind: datastore.ErrConnection, Err: err}
	}
	if f.failOn == op {
		return &datastore.OpError{Op: op, Record: record, Kind: datastore.ErrConnection, Err: errors.New("connection refused")}
	}
	if f.invalid[record] && strings.HasPrefix(op, "add") {
		return opErr(op, record, datastore.ErrInvalidData)
	}
	return nil
}

func opErr(op string, record string, kind error) error {
	return &datastore.OpError{Op: op, Record: record, Kind: kind, Err: fmt.Errorf("fake %v", kind)}
}

func (f *fakeStore) DeleteAllBlockSets(ctx context.Context) (int64, error) {
	if err := f.enter(ctx, "delete all block sets", ""); err != nil {
		return 0, err
	}
	f.mutations++
	n := int64(len(f.blockSets))
	f.blockSets = nil
	f.blocks = nil
	f.expansions = nil
	f.prints = nil
	return n, nil
}

func (f *fakeStore) DeleteAllCards(ctx context.Context) (int64, error) {
	if err := f.enter(ctx, "delete all cards", ""); err != nil {
		return 0, err
	}
	f.mutations++
	n := int64(len(f.cards))
	f.cards = nil
	f.prints = nil
	return n, nil
}

func (f *fakeStore) AddBlockSet(ctx context.Context, name string) (*datastore.BlockSet, error) {
	if err := f.enter(ctx, "add block set", name); err != nil {
		return nil, err
	}
	for _, bs := range f.blockSets {
		if bs.Name == name {
			return nil, opErr("add block set", name, datastore.ErrConstraintViolation)
		}
	}
	f.mutations++
	bs := datastore.BlockSet{Id: f.id(), Name: name}
	f.blockSets = append(f.blockSets, bs)
	return &bs, nil
}

func (f *fakeStore) AddExpansionBlock(ctx context.Context, name string, blockSetId int) (*datastore.ExpansionBlock, error) {
	if err := f.enter(ctx, "add expansion block", name); err != nil {
		return nil, err
	}
	found := false
	for _, bs := range f.blockSets {
		found = found || bs.Id == blockSetId
	}
	if !found {
		return nil, opErr("add expansion block", name, datastore.ErrReference)
	}
	f.mutations++
	eb := datastore.ExpansionBlock{Id: f.id(), Name: name, BlockSetId: blockSetId}
	f.blocks = append(f.blocks, eb)
	return &eb, nil
}

func (f *fakeStore) AddExpansion(ctx context.Context, name string, expansionBlockId int) (*datastore.Expansion, error) {
	if err := f.enter(ctx, "add expansion", name); err != nil {
		return nil, err
	}
	found := false
	for _, eb := range f.blocks {
		found = found || eb.Id == expansionBlockId
	}
	if !found {
		return nil, opErr("add expansion", name, datastore.ErrReference)
	}
	for _, e := range f.expansions {
		if e.Name == name {
			return nil, opErr("add expansion", name, datastore.ErrConstraintViolation)
		}
	}
	f.mutations++
	exp := datastore.Expansion{Id: f.id(), Name: name, ExpansionBlockId: expansionBlockId}
	f.expansions = append(f.expansions, exp)
	return &exp, nil
}

func (f *fakeStore) AddCard(ctx context.Context, nc datastore.NewCard) (*datastore.Card, error) {
	if err := f.enter(ctx, "add card", nc.Name); err != nil {
		return nil, err
	}
	for _, c := range f.cards {
		if c.Name == nc.Name {
			return nil, opErr("add card", nc.Name, datastore.ErrConstraintViolation)
		}
	}
	f.mutations++
	card := datastore.Card{
		Id:          f.id(),
		Name:        nc.Name,
		Category:    nc.Category,
		ManaCost:    nc.ManaCost,
		Classes:     nc.Classes,
		Types:       nc.Types,
		AttackTypes: nc.AttackTypes,
		Legalities:  nc.Legalities,
	}
	f.cards = append(f.cards, card)
	return &card, nil
}

func (f *fakeStore) AddCardPrint(ctx context.Context, np datastore.NewCardPrint) (*datastore.CardPrint, error) {
	if err := f.enter(ctx, "add card print", ""); err != nil {
		return nil, err
	}
	cardOK, expOK := false, false
	for _, c := range f.cards {
		cardOK = cardOK || c.Id == np.CardId
	}
	for _, e := range f.expansions {
		expOK = expOK || e.Id == np.ExpansionId
	}
	if !cardOK || !expOK {
		return nil, opErr("add card print", "", datastore.ErrReference)
	}
	f.mutations++
	cp := datastore.CardPrint{
		Id:            f.id(),
		CardId:        np.CardId,
		ExpansionId:   np.ExpansionId,
		IdInExpansion: np.IdInExpansion,
		ImageFrontUrl: np.ImageFrontUrl,
		ImageBackUrl:  np.ImageBackUrl,
		Rules:         np.Rules,
		Rarity:        np.Rarity,
	}
	f.prints = append(f.prints, cp)
	return &cp, nil
}

func (f *fakeStore) FindCardByName(ctx context.Context, name string) (*datastore.Card, error) {
	if err := f.enter(ctx, "find card", name); err != nil {
		return nil, err
	}
	for _, c := range f.cards {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, opErr("find card", name, datastore.ErrNotFound)
}

func (f *fakeStore) FindExpansionByName(ctx context.Context, name string) (*datastore.Expansion, error) {
	if err := f.enter(ctx, "find expansion", name); err != nil {
		return nil, err
	}
	for _, e := range f.expansions {
		if e.Name == name {
			e := e
			return &e, nil
		}
	}
	return nil, opErr("find expansion", name, datastore.ErrNotFound)
}
