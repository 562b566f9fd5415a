package bigbuy

import (
	"context"
	"net/url"
	"strconv"
)

// Catalog endpoints. Docs: https://api.bigbuy.eu/doc

func (c *Client) getRecord(ctx context.Context, path string, params url.Values) (Record, error) {
	var record Record
	if err := c.getJSON(ctx, path, params, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func (c *Client) getRecords(ctx context.Context, path string, params url.Values) ([]Record, error) {
	var records []Record
	if err := c.getJSON(ctx, path, params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func idPath(prefix string, id int64) string {
	return prefix + "/" + strconv.FormatInt(id, 10)
}

// GetAttribute gets a single attribute.
func (c *Client) GetAttribute(ctx context.Context, id int64, params url.Values) (Record, error) {
	return c.getRecord(ctx, idPath("catalog/attribute", id), params)
}

// GetAttributeAllLanguages gets a single attribute in every language.
func (c *Client) GetAttributeAllLanguages(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/attributealllanguages", id), params)
}

// GetAttributeGroup gets a single attribute group.
func (c *Client) GetAttributeGroup(ctx context.Context, id int64, params url.Values) (Record, error) {
	return c.getRecord(ctx, idPath("catalog/attributegroup", id), params)
}

// GetAttributeGroupAllLanguages gets a single attribute group in every language.
func (c *Client) GetAttributeGroupAllLanguages(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/attributegroupalllanguages", id), params)
}

// GetAttributeGroups lists all attribute groups.
func (c *Client) GetAttributeGroups(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/attributegroups", params)
}

// GetAttributes lists all attributes.
func (c *Client) GetAttributes(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/attributes", params)
}

// GetCategories lists all categories.
func (c *Client) GetCategories(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/categories", params)
}

// GetCategory returns the selected category.
func (c *Client) GetCategory(ctx context.Context, id int64, params url.Values) (Record, error) {
	return c.getRecord(ctx, idPath("catalog/category", id), params)
}

// GetCategoryAllLanguages returns the selected category in every language.
func (c *Client) GetCategoryAllLanguages(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/categoryalllanguages", id), params)
}

// GetLanguages returns all languages.
func (c *Client) GetLanguages(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/languages", params)
}

// GetManufacturer gets a single manufacturer.
func (c *Client) GetManufacturer(ctx context.Context, id int64, params url.Values) (Record, error) {
	return c.getRecord(ctx, idPath("catalog/manufacturer", id), params)
}

// GetManufacturers lists all manufacturers.
func (c *Client) GetManufacturers(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/manufacturers", params)
}

// GetProduct gets a single product.
func (c *Client) GetProduct(ctx context.Context, id int64, params url.Values) (Record, error) {
	return c.getRecord(ctx, idPath("catalog/product", id), params)
}

// GetProductCategories gets the categories of a product.
func (c *Client) GetProductCategories(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/productcategories", id), params)
}

// GetProductImages gets the images of a product.
func (c *Client) GetProductImages(ctx context.Context, id int64, params url.Values) (Record, error) {
	return c.getRecord(ctx, idPath("catalog/productimages", id), params)
}

// GetProductInformation gets the information of a product.
func (c *Client) GetProductInformation(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/productinformation", id), params)
}

// GetProductInformationAllLanguages gets the information of a product in every language.
func (c *Client) GetProductInformationAllLanguages(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/productinformationalllanguages", id), params)
}

// GetProductInformationBySKU gets the information of a product by SKU.
func (c *Client) GetProductInformationBySKU(ctx context.Context, sku string, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/productinformationbysku/"+url.PathEscape(sku), params)
}

// GetProducts returns all products.
func (c *Client) GetProducts(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/products", params)
}

// GetProductsCategories returns the categories of all products.
func (c *Client) GetProductsCategories(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/productscategories", params)
}

// GetProductsImages returns the images of all products.
func (c *Client) GetProductsImages(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/productsimages", params)
}

// GetProductsInformation returns the information of all products.
func (c *Client) GetProductsInformation(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/productsinformation", params)
}

// GetProductsStock returns the stock of all products.
func (c *Client) GetProductsStock(ctx context.Context, params url.Values) ([]ProductStock, error) {
	var stock []ProductStock
	if err := c.getJSON(ctx, "catalog/productsstock", params, &stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// GetProductsStockAvailable returns all products with available stock.
func (c *Client) GetProductsStockAvailable(ctx context.Context, params url.Values) ([]ProductStock, error) {
	var stock []ProductStock
	if err := c.getJSON(ctx, "catalog/productsstockavailable", params, &stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// GetProductsStockByReference returns the stock of the given SKUs.
func (c *Client) GetProductsStockByReference(ctx context.Context, skus []string) ([]ProductStock, error) {
	type ref struct {
		SKU string `json:"sku"`
	}
	refs := make([]ref, 0, len(skus))
	for _, sku := range skus {
		refs = append(refs, ref{SKU: sku})
	}
	payload := map[string]any{
		"product_stock_request": map[string]any{"products": refs},
	}

	var stock []ProductStock
	if err := c.postJSON(ctx, "catalog/productsstockbyreference", payload, &stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// GetProductsTags lists all product tags.
func (c *Client) GetProductsTags(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/productstags", params)
}

// GetProductStock gets the stock of a single product.
func (c *Client) GetProductStock(ctx context.Context, id int64, params url.Values) (*ProductStock, error) {
	var stock ProductStock
	if err := c.getJSON(ctx, idPath("catalog/productstock", id), params, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// GetProductsVariations returns all product variations.
func (c *Client) GetProductsVariations(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/productsvariations", params)
}

// GetProductsVariationsStock returns the stock of all product variations.
func (c *Client) GetProductsVariationsStock(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/productsvariationsstock", params)
}

// GetProductsVariationsStockAvailable returns the product variations with available stock.
func (c *Client) GetProductsVariationsStockAvailable(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/productsvariationsstockavailable", params)
}

// GetProductTags gets the tags of a product.
func (c *Client) GetProductTags(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/producttags", id), params)
}

// GetProductVariations gets the variations of a product.
func (c *Client) GetProductVariations(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/productvariations", id), params)
}

// GetProductVariationsStock gets the stock of a product's variations.
func (c *Client) GetProductVariationsStock(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/productvariationsstock", id), params)
}

// GetTag gets a single tag.
func (c *Client) GetTag(ctx context.Context, id int64, params url.Values) (Record, error) {
	return c.getRecord(ctx, idPath("catalog/tag", id), params)
}

// GetTagAllLanguages gets a single tag in every language.
func (c *Client) GetTagAllLanguages(ctx context.Context, id int64, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, idPath("catalog/tagalllanguages", id), params)
}

// GetTags lists all tags.
func (c *Client) GetTags(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/tags", params)
}

// GetVariation gets a single variation.
func (c *Client) GetVariation(ctx context.Context, id int64, params url.Values) (Record, error) {
	return c.getRecord(ctx, idPath("catalog/variation", id), params)
}

// GetVariations lists all variations.
func (c *Client) GetVariations(ctx context.Context, params url.Values) ([]Record, error) {
	return c.getRecords(ctx, "catalog/variations", params)
}
