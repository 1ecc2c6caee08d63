package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFontID(t *testing.T) {
	tests := []struct {
		family string
		want   string
	}{
		{family: "Open Sans", want: "open-sans"},
		{family: "Roboto", want: "roboto"},
		{family: "Noto  Sans\tJP", want: "noto-sans-jp"},
		{family: "EB Garamond", want: "eb-garamond"},
	}
	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			require.Equal(t, tt.want, FontID(tt.family))
			require.Equal(t, tt.want, Font{Family: tt.family}.ID())
		})
	}
}

func TestNotFoundError(t *testing.T) {
	err := error(&NotFoundError{Family: "Opn Sans", Suggestion: "Open Sans"})
	require.True(t, errors.Is(err, ErrFontNotFound))
	require.Equal(t, `Font "Opn Sans" not found, did you mean "Open Sans"?`, err.Error())

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "Opn Sans", nf.Family)

	plain := &NotFoundError{Family: "Zzz"}
	require.Equal(t, `Font "Zzz" not found`, plain.Error())
}

func TestOptions_SelectorSuffix(t *testing.T) {
	require.Equal(t, "", Options{}.SelectorSuffix())
	require.Equal(t, "-2", Options{PickerID: "2"}.SelectorSuffix())
}

func TestOptions_DefaultVariant(t *testing.T) {
	require.Equal(t, "regular", Options{}.DefaultVariant())
	require.Equal(t, "700", Options{Variants: []string{"700", "italic"}}.DefaultVariant())
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())
	require.NoError(t, Options{Sort: SortPopularity}.Validate())

	err := Options{Sort: "random"}.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown sort option")

	err = Options{Limit: -1}.Validate()
	require.Error(t, err)

	err = Options{Categories: []Category{"cursive"}}.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown category")
}

func TestSortOption_IsAlphabetical(t *testing.T) {
	assert.True(t, SortOption("").IsAlphabetical())
	assert.True(t, SortAlphabet.IsAlphabetical())
	assert.True(t, SortAlphabetical.IsAlphabetical())
	assert.False(t, SortPopularity.IsAlphabetical())
}

func testFonts() []Font {
	return []Font{
		{Family: "Roboto", Category: CategorySansSerif, Variants: []string{"regular", "700"}, Subsets: []string{"latin", "cyrillic"}},
		{Family: "Lora", Category: CategorySerif, Variants: []string{"regular", "italic"}, Subsets: []string{"latin"}},
		{Family: "Noto Sans JP", Category: CategorySansSerif, Variants: []string{"regular"}, Subsets: []string{"japanese"}},
		{Family: "Fira Code", Category: CategoryMonospace, Variants: []string{"regular", "700"}, Subsets: []string{"latin"}},
		{Family: "Pacifico", Category: CategoryHandwriting, Variants: []string{"regular"}, Subsets: []string{"latin"}},
	}
}

func families(fonts []Font) []string {
	out := make([]string, len(fonts))
	for i, f := range fonts {
		out[i] = f.Family
	}
	return out
}

func TestOptions_Filter(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "no filters keeps order",
			opts: Options{},
			want: []string{"Roboto", "Lora", "Noto Sans JP", "Fira Code", "Pacifico"},
		},
		{
			name: "latin script",
			opts: Options{Scripts: []string{"latin"}},
			want: []string{"Roboto", "Lora", "Fira Code", "Pacifico"},
		},
		{
			name: "families allow-list",
			opts: Options{Families: []string{"Pacifico", "Lora"}},
			want: []string{"Lora", "Pacifico"},
		},
		{
			name: "categories",
			opts: Options{Categories: []Category{CategorySansSerif, CategoryMonospace}},
			want: []string{"Roboto", "Noto Sans JP", "Fira Code"},
		},
		{
			name: "variants must all be present",
			opts: Options{Variants: []string{"regular", "700"}},
			want: []string{"Roboto", "Fira Code"},
		},
		{
			name: "limit",
			opts: Options{Limit: 2},
			want: []string{"Roboto", "Lora"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, families(tt.opts.filter(testFonts())))
		})
	}
}
