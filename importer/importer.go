// Package importer loads the catalog fixtures into the store: a reset,
// then block sets, expansion blocks and expansions, then cards, then card
// prints. Every store call is made one after the other on the caller's
// goroutine.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gurbos/tcgtracker/datastore"
	"github.com/gurbos/tcgtracker/fixture"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultTimeout bounds a whole run.
const DefaultTimeout = 10 * time.Minute

// ErrNotConfirmed is returned when the run was not confirmed. Nothing has
// been read or written when it is returned.
var ErrNotConfirmed = errors.New("import not confirmed")

// Config holds configuration for an import run.
type Config struct {
	HierarchyPath string
	CardsPath     string
	PrintsPath    string
	// Confirm must be set for the destructive reset to happen.
	Confirm bool
	// Timeout bounds the whole run. Zero means DefaultTimeout.
	Timeout time.Duration
}

// CatalogStore is the part of the persistence gateway the importer uses.
type CatalogStore interface {
	DeleteAllBlockSets(ctx context.Context) (int64, error)
	DeleteAllCards(ctx context.Context) (int64, error)
	AddBlockSet(ctx context.Context, name string) (*datastore.BlockSet, error)
	AddExpansionBlock(ctx context.Context, name string, blockSetId int) (*datastore.ExpansionBlock, error)
	AddExpansion(ctx context.Context, name string, expansionBlockId int) (*datastore.Expansion, error)
	AddCard(ctx context.Context, nc datastore.NewCard) (*datastore.Card, error)
	AddCardPrint(ctx context.Context, np datastore.NewCardPrint) (*datastore.CardPrint, error)
	FindCardByName(ctx context.Context, name string) (*datastore.Card, error)
	FindExpansionByName(ctx context.Context, name string) (*datastore.Expansion, error)
}

// Run executes an import. Fixtures are loaded before the store is touched.
// The returned report is non-nil once the reset has started, including when
// a fatal error stopped the run part way.
func Run(ctx context.Context, cfg Config, store CatalogStore, out io.Writer) (*Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}
	if store == nil {
		return nil, errors.New("catalog store is required")
	}
	if !cfg.Confirm {
		return nil, ErrNotConfirmed
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cat, err := fixture.Load(cfg.HierarchyPath, cfg.CardsPath, cfg.PrintsPath)
	if err != nil {
		return nil, err
	}
	sets, blocks, exps := cat.Tally()
	message.NewPrinter(language.English).Fprintf(out,
		"Loaded %d expansions from %d blocks of %d sets, %d cards and %d card prints\n",
		exps, blocks, sets, len(cat.Cards), len(cat.Prints))

	rep := newReport()
	defer rep.WriteSummary(out)

	steps := []struct {
		name string
		run  func() error
	}{
		{"reset", func() error { return reset(ctx, store, rep, out) }},
		{"import hierarchy", func() error { return importHierarchy(ctx, store, cat.BlockSets, rep, out) }},
		{"import cards", func() error { return importCards(ctx, store, cat.Cards, rep, out) }},
		{"import card prints", func() error { return importPrints(ctx, store, cat.Prints, rep, out) }},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			rep.Aborted = fmt.Errorf("%s: %w", s.name, err)
			return rep, rep.Aborted
		}
	}
	return rep, nil
}

// reset wipes block sets and cards. Expansion blocks, expansions and card
// prints go with them through the cascading foreign keys.
func reset(ctx context.Context, store CatalogStore, rep *Report, out io.Writer) error {
	fmt.Fprintln(out, "Deleting old sets from database")
	n, err := store.DeleteAllBlockSets(ctx)
	if err != nil {
		return err
	}
	rep.DeletedBlockSets = n

	fmt.Fprintln(out, "Deleting old cards from database")
	n, err = store.DeleteAllCards(ctx)
	if err != nil {
		return err
	}
	rep.DeletedCards = n
	return nil
}

// recordOrAbort files a per-record error in the report and returns nil, or
// returns err unchanged when it concerns the store as a whole.
func recordOrAbort(rep *Report, k Kind, name string, err error) error {
	if !datastore.IsRecordError(err) {
		return err
	}
	rep.failed(k, name, err)
	return nil
}

func parentMissing(k Kind, name string) error {
	return fmt.Errorf("%w: %s %q was not imported", datastore.ErrReference, k, name)
}

func importHierarchy(ctx context.Context, store CatalogStore, sets []fixture.BlockSet, rep *Report, out io.Writer) error {
	for _, set := range sets {
		fmt.Fprintf(out, "Inserting new set %s\n", set.Name)
		bs, err := store.AddBlockSet(ctx, set.Name)
		if err != nil {
			if err := recordOrAbort(rep, KindBlockSet, set.Name, err); err != nil {
				return err
			}
			skipBlocks(rep, set.Blocks, parentMissing(KindBlockSet, set.Name))
			continue
		}
		rep.inserted(KindBlockSet)

		bar := newProgressBar(out, set.Name, "block", len(set.Blocks))
		for _, block := range set.Blocks {
			eb, err := store.AddExpansionBlock(ctx, block.Name, bs.Id)
			if err != nil {
				if err := recordOrAbort(rep, KindExpansionBlock, block.Name, err); err != nil {
					return err
				}
				skipExpansions(rep, block.Expansions, parentMissing(KindExpansionBlock, block.Name))
				bar.step()
				continue
			}
			rep.inserted(KindExpansionBlock)

			for _, name := range block.Expansions {
				if _, err := store.AddExpansion(ctx, name, eb.Id); err != nil {
					if err := recordOrAbort(rep, KindExpansion, name, err); err != nil {
						return err
					}
					continue
				}
				rep.inserted(KindExpansion)
			}
			bar.step()
		}
		bar.finish()
	}
	return nil
}

func skipBlocks(rep *Report, blocks []fixture.ExpansionBlock, cause error) {
	for _, b := range blocks {
		rep.failed(KindExpansionBlock, b.Name, cause)
		skipExpansions(rep, b.Expansions, parentMissing(KindExpansionBlock, b.Name))
	}
}

func skipExpansions(rep *Report, names []string, cause error) {
	for _, name := range names {
		rep.failed(KindExpansion, name, cause)
	}
}

func importCards(ctx context.Context, store CatalogStore, cards []fixture.Card, rep *Report, out io.Writer) error {
	if len(cards) == 0 {
		return nil
	}
	fmt.Fprintln(out, "Inserting new cards")
	bar := newProgressBar(out, "Cards", "card", len(cards))
	defer bar.finish()

	for _, c := range cards {
		_, err := store.AddCard(ctx, datastore.NewCard{
			Name:        c.Name,
			Category:    c.Category,
			ManaCost:    c.ManaCost,
			Classes:     c.Classes,
			Types:       c.Types,
			AttackTypes: c.AttackTypes,
			Legalities:  c.Legalities,
		})
		bar.step()
		if err != nil {
			if err := recordOrAbort(rep, KindCard, c.Name, err); err != nil {
				return err
			}
			continue
		}
		rep.inserted(KindCard)
	}
	return nil
}

func printName(p fixture.CardPrint) string {
	return p.CardName + " (" + p.ExpansionName + " #" + strconv.Itoa(p.IdInExpansion) + ")"
}

// resolvePrint looks up the card and expansion a print refers to. A name
// that matches nothing yields an ErrReference; both lookups are always made
// so the report names every missing reference.
func resolvePrint(ctx context.Context, store CatalogStore, p fixture.CardPrint) (cardId int, expansionId int, err error) {
	card, cardErr := store.FindCardByName(ctx, p.CardName)
	if cardErr != nil && !errors.Is(cardErr, datastore.ErrNotFound) {
		return 0, 0, cardErr
	}
	exp, expErr := store.FindExpansionByName(ctx, p.ExpansionName)
	if expErr != nil && !errors.Is(expErr, datastore.ErrNotFound) {
		return 0, 0, expErr
	}

	var errs []error
	if cardErr != nil {
		errs = append(errs, fmt.Errorf("%w: card %q: %w", datastore.ErrReference, p.CardName, cardErr))
	}
	if expErr != nil {
		errs = append(errs, fmt.Errorf("%w: expansion %q: %w", datastore.ErrReference, p.ExpansionName, expErr))
	}
	if len(errs) > 0 {
		return 0, 0, errors.Join(errs...)
	}
	return card.Id, exp.Id, nil
}

func importPrints(ctx context.Context, store CatalogStore, prints []fixture.CardPrint, rep *Report, out io.Writer) error {
	if len(prints) == 0 {
		return nil
	}
	fmt.Fprintln(out, "Inserting new card prints")
	bar := newProgressBar(out, "Card prints", "print", len(prints))
	defer bar.finish()

	for _, p := range prints {
		name := printName(p)
		cardId, expId, err := resolvePrint(ctx, store, p)
		if err == nil {
			_, err = store.AddCardPrint(ctx, datastore.NewCardPrint{
				CardId:        cardId,
				ExpansionId:   expId,
				IdInExpansion: p.IdInExpansion,
				ImageFrontUrl: p.ImageFrontUrl,
				Rarity:        p.Rarity,
				ImageBackUrl:  p.ImageBackUrl,
				Rules:         p.Rules,
			})
		}
		bar.step()
		if err != nil {
			if err := recordOrAbort(rep, KindCardPrint, name, err); err != nil {
				return err
			}
			continue
		}
		rep.inserted(KindCardPrint)
	}
	return nil
}
