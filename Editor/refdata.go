package Editor

import (
	"context"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"RiderBross/Models"
)

// TypeOption is a service type as offered in the line item picker.
type TypeOption struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Reference    *string `json:"reference"`
	CategoryID   *uint   `json:"category_id"`
	CategoryName *string `json:"category_name"`
}

// ReferenceData holds every lookup set the editor needs.
type ReferenceData struct {
	Vehicles     []Models.Vehicle  `json:"vehicles"`
	Clients      []Models.Client   `json:"clients"`
	Brands       []Models.Brand    `json:"brands"`
	Provinces    []Models.Province `json:"provinces"`
	ServiceTypes []TypeOption      `json:"service_types"`
	States       []Models.State    `json:"states"`
}

type Loader struct {
	store ReferenceStore
}

func NewLoader(store ReferenceStore) *Loader {
	return &Loader{store: store}
}

// Load fetches all reference sets in parallel. Any failing set fails the load,
// except categories: when those cannot be fetched the types come back without
// a category name.
func (l *Loader) Load(ctx context.Context) (ReferenceData, error) {
	var (
		refs  ReferenceData
		types []Models.ServiceType
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		refs.Vehicles, err = l.store.ListVehicles(gctx)
		return err
	})
	g.Go(func() (err error) {
		refs.Clients, err = l.store.ListClients(gctx)
		return err
	})
	g.Go(func() (err error) {
		refs.Brands, err = l.store.ListBrands(gctx)
		return err
	})
	g.Go(func() (err error) {
		refs.Provinces, err = l.store.ListProvinces(gctx)
		return err
	})
	g.Go(func() (err error) {
		types, err = l.store.ListServiceTypes(gctx)
		return err
	})
	g.Go(func() (err error) {
		refs.States, err = l.store.ListStates(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return ReferenceData{}, errors.Wrap(err, "Error al cargar datos de referencia")
	}

	refs.ServiceTypes = l.typeOptions(ctx, types)
	return refs, nil
}

func (l *Loader) typeOptions(ctx context.Context, types []Models.ServiceType) []TypeOption {
	seen := map[uint]struct{}{}
	var ids []uint
	for _, t := range types {
		if t.CategoryID == nil {
			continue
		}
		if _, ok := seen[*t.CategoryID]; !ok {
			seen[*t.CategoryID] = struct{}{}
			ids = append(ids, *t.CategoryID)
		}
	}

	names := map[uint]string{}
	if len(ids) > 0 {
		categories, err := l.store.CategoriesByIDs(ctx, ids)
		if err != nil {
			log.Warn().Err(err).Int("categories", len(ids)).Msg("service categories unavailable, types left ungrouped")
		}
		for _, c := range categories {
			names[c.ID] = c.Name
		}
	}

	options := make([]TypeOption, 0, len(types))
	for _, t := range types {
		opt := TypeOption{ID: t.ID, Name: t.Name, Reference: t.Reference, CategoryID: t.CategoryID}
		if t.CategoryID != nil {
			if name, ok := names[*t.CategoryID]; ok {
				opt.CategoryName = &name
			}
		}
		options = append(options, opt)
	}
	SortTypeOptions(options)
	return options
}

// SortTypeOptions orders types by category name then type name using Spanish
// collation. Types without a resolved category go last.
func SortTypeOptions(options []TypeOption) {
	col := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(options, func(i, j int) bool {
		a, b := options[i], options[j]
		if (a.CategoryName == nil) != (b.CategoryName == nil) {
			return a.CategoryName != nil
		}
		if a.CategoryName != nil {
			if c := col.CompareString(*a.CategoryName, *b.CategoryName); c != 0 {
				return c < 0
			}
		}
		return col.CompareString(a.Name, b.Name) < 0
	})
}

func (r ReferenceData) Vehicle(id uint) *Models.Vehicle {
	for i := range r.Vehicles {
		if r.Vehicles[i].ID == id {
			return &r.Vehicles[i]
		}
	}
	return nil
}

func (r ReferenceData) Client(id uint) *Models.Client {
	for i := range r.Clients {
		if r.Clients[i].ID == id {
			return &r.Clients[i]
		}
	}
	return nil
}

func (r ReferenceData) ServiceType(id uint) *TypeOption {
	for i := range r.ServiceTypes {
		if r.ServiceTypes[i].ID == id {
			return &r.ServiceTypes[i]
		}
	}
	return nil
}

// ClientForVehicle returns the owner of a vehicle, nil when unknown.
func (r ReferenceData) ClientForVehicle(vehicleID uint) *uint {
	v := r.Vehicle(vehicleID)
	if v == nil || v.ClientID == nil {
		return nil
	}
	id := *v.ClientID
	return &id
}

// VehicleLabel renders "PLATE — Surnames, Names — Brand Model" for the vehicle selector.
func (r ReferenceData) VehicleLabel(v Models.Vehicle) string {
	owner := "Sin cliente"
	if v.ClientID != nil {
		if c := r.Client(*v.ClientID); c != nil {
			owner = c.FullName()
		}
	}

	brand := ""
	if v.BrandID != nil {
		for _, b := range r.Brands {
			if b.ID == *v.BrandID {
				brand = b.Description
				break
			}
		}
	}
	model := ""
	if v.ModelName != nil {
		model = *v.ModelName
	}

	label := v.Plate + " — " + owner
	if desc := strings.TrimSpace(brand + " " + model); desc != "" {
		label += " — " + desc
	}
	return label
}

// ClientAddress renders "Province - Locality - Address" skipping blanks, or "—".
func (r ReferenceData) ClientAddress(c Models.Client) string {
	var parts []string
	if c.ProvinceID != nil {
		for _, p := range r.Provinces {
			if p.ID == *c.ProvinceID && strings.TrimSpace(p.Description) != "" {
				parts = append(parts, p.Description)
				break
			}
		}
	}
	for _, v := range []*string{c.Locality, c.Address} {
		if v != nil && strings.TrimSpace(*v) != "" {
			parts = append(parts, *v)
		}
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, " - ")
}
