package cmd

import (
	"context"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bixoto/bigbuy-go/bigbuy"
	"github.com/bixoto/bigbuy-go/filter"
)

var (
	filterExpr string
	preset     string
	isoCode    string
	page       int
	pageSize   int
)

type (
	listFunc func(c *bigbuy.Client, ctx context.Context, params url.Values) ([]bigbuy.Record, error)
	getFunc  func(c *bigbuy.Client, ctx context.Context, id int64, params url.Values) (bigbuy.Record, error)
)

var catalogLists = map[string]listFunc{
	"attributegroups":                  (*bigbuy.Client).GetAttributeGroups,
	"attributes":                       (*bigbuy.Client).GetAttributes,
	"carriers":                         (*bigbuy.Client).GetCarriers,
	"categories":                       (*bigbuy.Client).GetCategories,
	"languages":                        (*bigbuy.Client).GetLanguages,
	"manufacturers":                    (*bigbuy.Client).GetManufacturers,
	"products":                         (*bigbuy.Client).GetProducts,
	"productscategories":               (*bigbuy.Client).GetProductsCategories,
	"productsimages":                   (*bigbuy.Client).GetProductsImages,
	"productsinformation":              (*bigbuy.Client).GetProductsInformation,
	"productstags":                     (*bigbuy.Client).GetProductsTags,
	"productsvariations":               (*bigbuy.Client).GetProductsVariations,
	"productsvariationsstock":          (*bigbuy.Client).GetProductsVariationsStock,
	"productsvariationsstockavailable": (*bigbuy.Client).GetProductsVariationsStockAvailable,
	"tags":                             (*bigbuy.Client).GetTags,
	"variations":                       (*bigbuy.Client).GetVariations,
}

var catalogItems = map[string]getFunc{
	"attribute":      (*bigbuy.Client).GetAttribute,
	"attributegroup": (*bigbuy.Client).GetAttributeGroup,
	"category":       (*bigbuy.Client).GetCategory,
	"manufacturer":   (*bigbuy.Client).GetManufacturer,
	"product":        (*bigbuy.Client).GetProduct,
	"productimages":  (*bigbuy.Client).GetProductImages,
	"tag":            (*bigbuy.Client).GetTag,
	"variation":      (*bigbuy.Client).GetVariation,
}

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog <resource> [id]",
	Short: "Query the BigBuy catalog",
	Long: `Query a BigBuy catalog resource and print it as JSON.

List resources can be narrowed with an expression filter, either given
inline with --filter or taken from the filters section of the config:

  bigbuy catalog products --filter 'num(wholesalePrice) < 5 and active == 1'
  bigbuy catalog product 1234`,
	Args: cobra.RangeArgs(1, 2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return catalogResources(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	catalogCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	catalogCmd.Flags().StringVar(&isoCode, "iso-code", "", "language of the returned texts (e.g. es, fr)")
	catalogCmd.Flags().IntVar(&page, "page", 0, "page number")
	catalogCmd.Flags().IntVar(&pageSize, "page-size", 0, "page size")
}

func catalogResources() []string {
	names := slices.Concat(slices.Collect(maps.Keys(catalogLists)), slices.Collect(maps.Keys(catalogItems)))
	slices.Sort(names)
	return names
}

func catalogParams() url.Values {
	params := url.Values{}
	if isoCode != "" {
		params.Set("isoCode", isoCode)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}
	return params
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	resource := strings.ToLower(args[0])
	params := catalogParams()

	if get, ok := catalogItems[resource]; ok {
		if len(args) != 2 {
			return fmt.Errorf("%s needs an id", resource)
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}
		record, err := get(client, ctx, id, params)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), record)
	}

	list, ok := catalogLists[resource]
	if !ok {
		return fmt.Errorf("unknown catalog resource %q (one of: %s)", resource, strings.Join(catalogResources(), ", "))
	}

	f, err := getFilter()
	if err != nil {
		return err
	}

	records, err := list(client, ctx, params)
	if err != nil {
		return err
	}
	total := len(records)

	if f != nil {
		logger.Info().Str("filter", f.Expression()).Int("records", total).Msg("Filtering catalog records")
		if records, err = f.Apply(records); err != nil {
			return err
		}
	}

	if f != nil && !jsonOutput {
		fmt.Fprintf(cmd.ErrOrStderr(), "Found %d of %d records matching the filter.\n", len(records), total)
	}
	return printJSON(cmd.OutOrStdout(), records)
}

// getFilter determines the filter to apply, if any.
// Priority: command line filter > preset.
func getFilter() (*filter.Filter, error) {
	if filterExpr != "" {
		f, err := filter.Compile(filterExpr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter expression: %w", err)
		}
		return f, nil
	}

	if preset != "" {
		if f, ok := filters.GetFilter(strings.ToLower(preset)); ok {
			return f, nil
		}
		return nil, fmt.Errorf("preset '%s' not found in config (available: %s)", preset, strings.Join(filters.ListFilters(), ", "))
	}

	return nil, nil
}
