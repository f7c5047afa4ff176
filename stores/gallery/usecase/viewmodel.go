package usecase

import (
	"sort"
	"strings"

	"github.com/x-xyz/nftgallery/domain"
	"github.com/x-xyz/nftgallery/domain/gallery"
	"github.com/x-xyz/nftgallery/domain/nft"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ViewModel derives the visible page of a collection. It is not safe for concurrent
// use, session guards it.
type ViewModel struct {
	collection []nft.Nft
	selection  gallery.Selection
	favorites  gallery.FavoriteSet

	textCollator *collate.Collator
	// tokenIds are decimal strings, "2" goes before "10"
	numCollator *collate.Collator
	folder      cases.Caser
}

func NewViewModel(pageSize int) *ViewModel {
	return &ViewModel{
		collection:   []nft.Nft{},
		selection:    gallery.DefaultSelection(pageSize),
		favorites:    gallery.FavoriteSet{},
		textCollator: collate.New(language.English, collate.IgnoreCase),
		numCollator:  collate.New(language.English, collate.IgnoreCase, collate.Numeric),
		folder:       cases.Fold(),
	}
}

// Replace swaps the whole collection and resets the selection, favorites are kept
func (vm *ViewModel) Replace(collection []nft.Nft) {
	if collection == nil {
		collection = []nft.Nft{}
	}
	vm.collection = collection
	vm.selection = gallery.DefaultSelection(vm.selection.PageSize)
}

func (vm *ViewModel) Len() int {
	return len(vm.collection)
}

func (vm *ViewModel) Selection() gallery.Selection {
	return vm.selection
}

func (vm *ViewModel) SetSearchTerm(term string) {
	vm.selection.SearchTerm = term
	vm.selection.PageIndex = 1
}

func (vm *ViewModel) SetSortKey(key gallery.SortKey) error {
	if !key.IsValid() {
		return domain.ErrBadParamInput
	}
	vm.selection.SortKey = key
	vm.selection.PageIndex = 1
	return nil
}

// SetCollectionFilter takes a collection name, empty means all
func (vm *ViewModel) SetCollectionFilter(name string) {
	if name == "" {
		name = gallery.CollectionAll
	}
	vm.selection.CollectionFilter = name
	vm.selection.PageIndex = 1
}

func (vm *ViewModel) SetPageSize(size int) error {
	if size < 1 {
		return domain.ErrBadParamInput
	}
	vm.selection.PageSize = size
	vm.clamp(len(vm.filter()))
	return nil
}

// SetPage moves to page, clamped into [1, TotalPages]
func (vm *ViewModel) SetPage(page int) {
	vm.selection.PageIndex = page
	vm.clamp(len(vm.filter()))
}

func (vm *ViewModel) NextPage() {
	vm.SetPage(vm.selection.PageIndex + 1)
}

func (vm *ViewModel) PrevPage() {
	vm.SetPage(vm.selection.PageIndex - 1)
}

func (vm *ViewModel) TotalPages() int {
	return totalPages(len(vm.filter()), vm.selection.PageSize)
}

// View runs filter, sort and paginate over the current selection
func (vm *ViewModel) View() gallery.View {
	filtered := vm.filter()
	vm.sort(filtered)
	vm.clamp(len(filtered))

	size := vm.selection.PageSize
	from := (vm.selection.PageIndex - 1) * size
	to := from + size
	if to > len(filtered) {
		to = len(filtered)
	}

	items := make([]gallery.ViewItem, 0, to-from)
	for _, n := range filtered[from:to] {
		items = append(items, gallery.ViewItem{Nft: n, Favorite: vm.favorites.Has(n.Key())})
	}

	view := gallery.View{
		Items:         items,
		Selection:     vm.selection,
		TotalPages:    totalPages(len(filtered), size),
		FilteredCount: len(filtered),
		TotalCount:    len(vm.collection),
		Collections:   vm.Collections(),
	}
	if len(items) > 0 {
		view.From = from + 1
		view.To = to
	}
	return view
}

// Collections lists "all" then every distinct collection name in first seen order
func (vm *ViewModel) Collections() []string {
	res := []string{gallery.CollectionAll}
	seen := map[string]struct{}{}
	for _, n := range vm.collection {
		if n.Collection == "" {
			continue
		}
		if _, ok := seen[n.Collection]; ok {
			continue
		}
		seen[n.Collection] = struct{}{}
		res = append(res, n.Collection)
	}
	return res
}

// ToggleFavorite returns whether n is a favorite afterwards
func (vm *ViewModel) ToggleFavorite(n nft.Nft) bool {
	return vm.favorites.Toggle(n.Key())
}

func (vm *ViewModel) IsFavorite(n nft.Nft) bool {
	return vm.favorites.Has(n.Key())
}

func (vm *ViewModel) Favorites() []string {
	return vm.favorites.Keys()
}

// Detail finds a token of the current collection
func (vm *ViewModel) Detail(contract domain.Address, tokenId domain.TokenId) (gallery.ViewItem, error) {
	for _, n := range vm.collection {
		if n.Is(contract, tokenId) {
			return gallery.ViewItem{Nft: n, Favorite: vm.favorites.Has(n.Key())}, nil
		}
	}
	return gallery.ViewItem{}, domain.ErrNotFound
}

func (vm *ViewModel) filter() []nft.Nft {
	term := vm.folder.String(vm.selection.SearchTerm)
	coll := vm.selection.CollectionFilter
	res := make([]nft.Nft, 0, len(vm.collection))
	for _, n := range vm.collection {
		if coll != "" && coll != gallery.CollectionAll && n.Collection != coll {
			continue
		}
		if term != "" &&
			!strings.Contains(vm.folder.String(n.Name), term) &&
			!strings.Contains(vm.folder.String(n.Collection), term) &&
			!strings.Contains(vm.folder.String(n.TokenId), term) {
			continue
		}
		res = append(res, n)
	}
	return res
}

func (vm *ViewModel) sort(nfts []nft.Nft) {
	var field func(n nft.Nft) string
	collator := vm.textCollator
	switch vm.selection.SortKey {
	case gallery.SortKeyName:
		field = func(n nft.Nft) string { return n.Name }
	case gallery.SortKeyCollection:
		field = func(n nft.Nft) string { return n.Collection }
	case gallery.SortKeyTokenId:
		field = func(n nft.Nft) string { return n.TokenId }
		collator = vm.numCollator
	default:
		return
	}
	sort.SliceStable(nfts, func(i, j int) bool {
		return collator.CompareString(field(nfts[i]), field(nfts[j])) < 0
	})
}

func (vm *ViewModel) clamp(filtered int) {
	pages := totalPages(filtered, vm.selection.PageSize)
	if vm.selection.PageIndex > pages {
		vm.selection.PageIndex = pages
	}
	if vm.selection.PageIndex < 1 {
		vm.selection.PageIndex = 1
	}
}

func totalPages(filtered, pageSize int) int {
	if pageSize < 1 {
		pageSize = gallery.DefaultPageSize
	}
	pages := (filtered + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
