package fontpicker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/fontpick/internal/catalog"
	"github.com/zjrosen/fontpick/internal/ui/pointer"
	"github.com/zjrosen/fontpick/internal/ui/uitree"
)

func TestController_StartsLoading(t *testing.T) {
	c := newTestController(t, newMockCatalog(defaultFonts()))

	require.Equal(t, StatusLoading, c.Status())
	require.Equal(t, Collapsed, c.Expansion())
	require.Equal(t, "Open Sans", c.ActiveFamily())
	require.Empty(t, c.Fonts(), "no rows while loading")
	require.Empty(t, c.List().Children())
}

func TestController_InitCmd(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("Init", mock.Anything).Return(nil).Once()
	c := newTestController(t, cat)

	msg := c.InitCmd(context.Background())()
	loaded, ok := msg.(CatalogLoadedMsg)
	require.True(t, ok)
	require.Equal(t, c.ID(), loaded.InstanceID)
	require.NoError(t, loaded.Err)

	c.HandleCatalogLoaded(loaded)
	require.Equal(t, StatusFinished, c.Status())
	cat.AssertExpectations(t)
}

func TestController_InitFailure(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("Init", mock.Anything).Return(errors.New("network down"))
	c := newTestController(t, cat)

	msg := c.InitCmd(context.Background())().(CatalogLoadedMsg)
	c.HandleCatalogLoaded(msg)

	require.Equal(t, StatusError, c.Status())
	require.Empty(t, c.Fonts())
	require.Empty(t, c.Err(), "load failures are not a selection error")

	// still interactive
	c.ToggleExpanded()
	require.True(t, c.Expanded())
}

func TestController_FontsSortedAlphabetically(t *testing.T) {
	c := loadedController(t, newMockCatalog(defaultFonts()))
	require.Equal(t, []string{"Abel", "lato", "Montserrat", "Open Sans", "Roboto"}, familiesOf(c.Fonts()))
}

func TestController_FontsPopularityOrder(t *testing.T) {
	c := loadedController(t, newMockCatalog(defaultFonts()), func(cfg *Config) {
		cfg.Sort = catalog.SortPopularity
	})
	require.Equal(t, []string{"Roboto", "Open Sans", "lato", "Montserrat", "Abel"}, familiesOf(c.Fonts()))
}

func TestController_LimitAppliedBeforeSort(t *testing.T) {
	c := loadedController(t, newMockCatalog(defaultFonts()), func(cfg *Config) {
		cfg.Limit = 3
		cfg.Sort = catalog.SortAlphabetical
	})
	require.Equal(t, []string{"lato", "Open Sans", "Roboto"}, familiesOf(c.Fonts()))
}

func TestController_NodeIDs(t *testing.T) {
	t.Run("without picker id", func(t *testing.T) {
		c := loadedController(t, newMockCatalog(fontsNamed("Open Sans")))
		require.Equal(t, "font-picker", c.Root().ID)
		require.Equal(t, "dropdown-button", c.Button().ID)
		require.Equal(t, "font-list", c.List().ID)
		require.Equal(t, "font-button-open-sans", c.ItemNode(0).ID)
	})

	t.Run("with picker id", func(t *testing.T) {
		cat := newMockCatalog(fontsNamed("Open Sans", "Source  Code Pro"))
		cat.suffix = "-main"
		c := loadedController(t, cat)
		require.Equal(t, "font-picker-main", c.Root().ID)
		require.Equal(t, "dropdown-button-main", c.Button().ID)
		require.Equal(t, "font-list-main", c.List().ID)
		require.Equal(t, "font-button-open-sans-main", c.ItemNode(0).ID)
		require.Equal(t, "font-button-source-code-pro-main", c.ItemNode(1).ID)
		require.Nil(t, c.ItemNode(2))
	})
}

func TestController_SetActiveFontFamily(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("SetActiveFont", "Roboto").Return(catalog.Font{Family: "Roboto"}, nil).Once()
	c := loadedController(t, cat)

	require.NoError(t, c.SetActiveFontFamily("Roboto"))
	require.Equal(t, "Roboto", c.ActiveFamily())
	require.Equal(t, "Roboto", c.LastApplied())
	require.Equal(t, "Roboto", c.Button().Text)
	require.Equal(t, StatusFinished, c.Status())
	cat.AssertExpectations(t)
}

func TestController_SetActiveFontFamily_NotFound(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("SetActiveFont", "Nope").Return(catalog.Font{}, &catalog.NotFoundError{Family: "Nope"})
	c := loadedController(t, cat)
	before := familiesOf(c.Fonts())

	err := c.SetActiveFontFamily("Nope")
	require.ErrorIs(t, err, catalog.ErrFontNotFound)
	require.Equal(t, StatusError, c.Status())
	require.Equal(t, `Font "Nope" not found`, c.Err())
	require.Equal(t, "Open Sans", c.ActiveFamily(), "previous family kept")
	require.Equal(t, before, familiesOf(c.Fonts()), "list kept")
}

func TestController_ErrorRecoversOnSuccess(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("SetActiveFont", "Nope").Return(catalog.Font{}, &catalog.NotFoundError{Family: "Nope"})
	cat.On("SetActiveFont", "Abel").Return(catalog.Font{Family: "Abel"}, nil)
	c := loadedController(t, cat)

	require.Error(t, c.SetActiveFontFamily("Nope"))
	require.Equal(t, StatusError, c.Status())

	require.NoError(t, c.SetActiveFontFamily("Abel"))
	require.Equal(t, StatusFinished, c.Status())
	require.Empty(t, c.Err())
}

func TestController_SetActiveBeforeLoaded(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	c := newTestController(t, cat)

	require.ErrorIs(t, c.SetActiveFontFamily("Roboto"), ErrCatalogNotReady)
	require.Equal(t, StatusLoading, c.Status())
	cat.AssertNotCalled(t, "SetActiveFont", mock.Anything)
}

func TestController_ToggleRegistersOneListener(t *testing.T) {
	d := pointer.NewDispatcher()
	c := loadedController(t, newMockCatalog(defaultFonts()), func(cfg *Config) { cfg.Pointer = d })

	c.ToggleExpanded()
	require.True(t, c.Expanded())
	require.Equal(t, 1, d.Count())
	require.True(t, c.Registered())

	c.ToggleExpanded()
	require.False(t, c.Expanded())
	require.Equal(t, 0, d.Count())
	require.False(t, c.Registered())
}

func TestController_RegistrationMatchesExpansion(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		d := pointer.NewDispatcher()
		c := New(Config{Catalog: newMockCatalog(defaultFonts()), ActiveFamily: "Open Sans", Pointer: d})
		c.HandleCatalogLoaded(CatalogLoadedMsg{InstanceID: c.ID()})
		outside := uitree.NewRoot("elsewhere")

		ops := rapid.SliceOf(rapid.IntRange(0, 3)).Draw(rt, "ops")
		for _, op := range ops {
			switch op {
			case 0:
				c.ToggleExpanded()
			case 1:
				c.Collapse()
			case 2:
				d.Dispatch(outside)
			case 3:
				d.Dispatch(c.Button())
			}
			want := 0
			if c.Expanded() {
				want = 1
			}
			if d.Count() != want {
				rt.Fatalf("expanded=%v but %d listeners", c.Expanded(), d.Count())
			}
		}
		c.Close()
		if d.Count() != 0 {
			rt.Fatalf("listener leaked after close")
		}
	})
}

func TestController_OutsideActivation(t *testing.T) {
	d := pointer.NewDispatcher()
	c := loadedController(t, newMockCatalog(defaultFonts()), func(cfg *Config) { cfg.Pointer = d })
	page := uitree.NewRoot("page")
	page.Adopt(c.Root())
	elsewhere := page.Append("sample-text", "The quick brown fox")

	c.ToggleExpanded()

	for _, inside := range []*uitree.Node{c.Root(), c.Button(), c.List(), c.ItemNode(2)} {
		d.Dispatch(inside)
		require.True(t, c.Expanded(), "activation on %s keeps the list open", inside.ID)
	}

	d.Dispatch(elsewhere)
	require.False(t, c.Expanded())
	require.Equal(t, 0, d.Count())
}

func TestController_OutsideActivation_Detached(t *testing.T) {
	c := loadedController(t, newMockCatalog(defaultFonts()))
	c.ToggleExpanded()

	c.HandleOutsideActivation(uitree.NewRoot("orphan"))
	require.False(t, c.Expanded())
}

func TestController_TwoPickersShareDispatcher(t *testing.T) {
	d := pointer.NewDispatcher()
	catA := newMockCatalog(defaultFonts())
	catA.suffix = "-a"
	catB := newMockCatalog(defaultFonts())
	catB.suffix = "-b"
	a := loadedController(t, catA, func(cfg *Config) { cfg.Pointer = d })
	b := loadedController(t, catB, func(cfg *Config) { cfg.Pointer = d })

	a.ToggleExpanded()
	b.ToggleExpanded()
	require.Equal(t, 2, d.Count())

	// a click on b's button collapses a but not b
	d.Dispatch(b.Button())
	require.False(t, a.Expanded())
	require.True(t, b.Expanded())
	require.Equal(t, 1, d.Count())
}

func TestController_ActivateSelection(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("SetActiveFont", "Abel").Return(catalog.Font{Family: "Abel"}, nil).Once()

	var changed []catalog.Font
	c := loadedController(t, cat, func(cfg *Config) {
		cfg.OnChange = func(f catalog.Font) { changed = append(changed, f) }
	})
	c.ToggleExpanded()

	font, applied, err := c.ActivateSelection(c.ItemNode(0))
	require.NoError(t, err)
	require.True(t, applied)
	require.Equal(t, "Abel", font.Family)
	require.Equal(t, []catalog.Font{{Family: "Abel"}}, changed, "OnChange called exactly once")
	require.False(t, c.Expanded())
	require.False(t, c.Registered())
	cat.AssertExpectations(t)
}

func TestController_ActivateSelection_Failure(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("SetActiveFont", "Ghost").Return(catalog.Font{}, &catalog.NotFoundError{Family: "Ghost"})

	calls := 0
	c := loadedController(t, cat, func(cfg *Config) {
		cfg.OnChange = func(catalog.Font) { calls++ }
	})
	c.ToggleExpanded()

	_, applied, err := c.ActivateSelection(&uitree.Node{ID: "font-button-ghost", Text: "Ghost"})
	require.NoError(t, err, "set failures are recorded, not returned")
	require.False(t, applied)
	require.Zero(t, calls)
	require.False(t, c.Expanded(), "collapses regardless of outcome")
	require.Equal(t, StatusError, c.Status())
	require.Equal(t, "Open Sans", c.ActiveFamily())
}

func TestController_ActivateSelection_MissingTarget(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	c := loadedController(t, cat)
	c.ToggleExpanded()

	_, _, err := c.ActivateSelection(nil)
	require.ErrorIs(t, err, ErrMissingSelectionTarget)

	_, _, err = c.ActivateSelection(&uitree.Node{ID: "blank", Text: "  "})
	require.ErrorIs(t, err, ErrMissingSelectionTarget)

	require.True(t, c.Expanded(), "no state change")
	require.Equal(t, StatusFinished, c.Status())
	cat.AssertNotCalled(t, "SetActiveFont", mock.Anything)
}

func TestController_SyncActiveFamily(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("SetActiveFont", "Roboto").Return(catalog.Font{Family: "Roboto"}, nil).Once()
	c := loadedController(t, cat, func(cfg *Config) { cfg.Controlled = true })
	require.True(t, c.Controlled())

	require.NoError(t, c.SyncActiveFamily("Open Sans"))
	cat.AssertNotCalled(t, "SetActiveFont", mock.Anything)

	require.NoError(t, c.SyncActiveFamily("Roboto"))
	require.NoError(t, c.SyncActiveFamily("Roboto"))
	require.NoError(t, c.SyncActiveFamily("Roboto"))

	cat.AssertNumberOfCalls(t, "SetActiveFont", 1)
	require.Equal(t, "Roboto", c.ActiveFamily())
}

func TestController_SyncRejectedFamilyAskedOnce(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("SetActiveFont", "Nope").Return(catalog.Font{}, errors.New(`font "Nope" not found`))
	cat.On("SetActiveFont", "Roboto").Return(catalog.Font{Family: "Roboto"}, nil).Once()
	c := loadedController(t, cat, func(cfg *Config) { cfg.Controlled = true })

	require.ErrorContains(t, c.SyncActiveFamily("Nope"), "Nope")
	require.NoError(t, c.SyncActiveFamily("Nope"))
	require.NoError(t, c.SyncActiveFamily("Nope"))
	cat.AssertNumberOfCalls(t, "SetActiveFont", 1)
	require.Equal(t, "Open Sans", c.ActiveFamily())
	require.Equal(t, StatusError, c.Status())

	require.NoError(t, c.SyncActiveFamily("Roboto"))
	require.Error(t, c.SyncActiveFamily("Nope"), "a changed host value is tried again")
	cat.AssertNumberOfCalls(t, "SetActiveFont", 3)
	require.Equal(t, "Roboto", c.ActiveFamily())
}

func TestController_SyncIgnoredWhenUncontrolled(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	c := loadedController(t, cat)
	require.False(t, c.Controlled())

	require.ErrorIs(t, c.SyncActiveFamily("Roboto"), ErrNotControlled)
	require.Equal(t, "Open Sans", c.ActiveFamily())
	cat.AssertNotCalled(t, "SetActiveFont", mock.Anything)
}

func TestController_SyncDuringLoadingAppliesAfterInit(t *testing.T) {
	cat := newMockCatalog(defaultFonts())
	cat.On("SetActiveFont", "Lato").Return(catalog.Font{Family: "Lato"}, nil).Once()
	c := newTestController(t, cat, func(cfg *Config) { cfg.Controlled = true })

	require.NoError(t, c.SyncActiveFamily("Lato"))
	cat.AssertNotCalled(t, "SetActiveFont", mock.Anything)

	c.HandleCatalogLoaded(CatalogLoadedMsg{InstanceID: c.ID()})
	require.Equal(t, "Lato", c.ActiveFamily())
	cat.AssertExpectations(t)
}

func TestController_IgnoresOtherInstances(t *testing.T) {
	c := newTestController(t, newMockCatalog(defaultFonts()))
	c.HandleCatalogLoaded(CatalogLoadedMsg{InstanceID: "someone-else"})
	require.Equal(t, StatusLoading, c.Status())
}

func TestController_Close(t *testing.T) {
	d := pointer.NewDispatcher()
	cat := newMockCatalog(defaultFonts())
	c := newTestController(t, cat, func(cfg *Config) { cfg.Pointer = d })

	c.ToggleExpanded()
	require.Equal(t, 1, d.Count())

	c.Close()
	require.True(t, c.Closed())
	require.Equal(t, 0, d.Count())

	// late completion is dropped
	c.HandleCatalogLoaded(CatalogLoadedMsg{InstanceID: c.ID()})
	require.Equal(t, StatusLoading, c.Status())

	c.ToggleExpanded()
	require.False(t, c.Expanded())
	require.Equal(t, 0, d.Count())

	c.Close()
}

func TestController_OnScrollIgnoredUntilFinished(t *testing.T) {
	c := newTestController(t, newMockCatalog(manyFonts(100)))
	g := ScrollGeometry{ClientHeight: 8, ScrollHeight: 100, ItemCount: 100}
	require.Nil(t, c.OnScroll(g))
	require.Nil(t, c.FlushPreviews())
}

func TestController_RapidScrollsForwardOnce(t *testing.T) {
	cat := newMockCatalog(manyFonts(100))
	cat.On("DownloadPreviews", 35).Return().Once()
	c := loadedController(t, cat)

	armed := 0
	for i := range 10 {
		g := ScrollGeometry{ScrollTop: 40 * i, ClientHeight: 200, ScrollHeight: 2000, ItemCount: 100}
		if i == 9 {
			g.ScrollTop = 400
		}
		if c.OnScroll(g) != nil {
			armed++
		}
	}
	require.Equal(t, 1, armed)

	cmd := c.FlushPreviews()
	require.NotNil(t, cmd)
	msg := cmd().(PreviewsDownloadedMsg)
	require.Equal(t, 35, msg.UpTo)
	require.Equal(t, c.ID(), msg.InstanceID)

	assert.Nil(t, c.FlushPreviews(), "window already flushed")
	cat.AssertNumberOfCalls(t, "DownloadPreviews", 1)
}

func TestController_PreviewWithoutSource(t *testing.T) {
	c := loadedController(t, newMockCatalog(defaultFonts()))
	_, ok := c.Preview("Abel")
	require.False(t, ok)
}
