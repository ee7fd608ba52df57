package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/Sarcastic-Soul/storefront/internal/domain"
)

// MaxImageBytes is the client-side cap on image uploads, matching the
// form's own limit. Larger payloads fail locally with ErrValidation.
const MaxImageBytes = 5 << 20

// GetProducts fetches the full catalog.
func (c *Client) GetProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, "", &products); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return products, nil
}

// SearchProducts fetches products matching keyword.
func (c *Client) SearchProducts(ctx context.Context, keyword string) ([]domain.Product, error) {
	query := url.Values{"keyword": {keyword}}
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, "/products/search", query, nil, "", &products); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id int) (domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, "/product/"+strconv.Itoa(id), nil, nil, "", &product); err != nil {
		return domain.Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return product, nil
}

// CreateProduct creates a product from a JSON body. The image, if any,
// is uploaded separately via UploadImage and referenced by ImageURL.
func (c *Client) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	var created domain.Product
	if err := c.postJSON(ctx, "/product", p, &created); err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// UpdateProduct replaces a product. The request is multipart: a "product"
// JSON part plus an optional "image" file part, mirroring the update
// form's submission.
func (c *Client) UpdateProduct(ctx context.Context, id int, p domain.Product, image []byte, imageName string) (domain.Product, error) {
	if len(image) > MaxImageBytes {
		return domain.Product{}, fmt.Errorf("image is %d bytes, max %d: %w", len(image), MaxImageBytes, domain.ErrValidation)
	}
	p.ID = id

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="product"`)
	header.Set("Content-Type", "application/json")
	part, err := w.CreatePart(header)
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product part: %w", err)
	}
	if err := json.NewEncoder(part).Encode(p); err != nil {
		return domain.Product{}, fmt.Errorf("encode product part: %w", err)
	}

	if len(image) > 0 {
		fw, err := w.CreateFormFile("image", imageName)
		if err != nil {
			return domain.Product{}, fmt.Errorf("create image part: %w", err)
		}
		if _, err := fw.Write(image); err != nil {
			return domain.Product{}, fmt.Errorf("write image part: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return domain.Product{}, fmt.Errorf("close multipart body: %w", err)
	}

	var updated domain.Product
	err = c.do(ctx, http.MethodPut, "/product/"+strconv.Itoa(id), nil, &buf, w.FormDataContentType(), &updated)
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return updated, nil
}

// DeleteProduct removes a product by id.
func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, "/product/"+strconv.Itoa(id), nil, nil, "", nil); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

// UploadImage uploads an image and returns the server-hosted reference
// for it. The reference is opaque to the rest of the client.
func (c *Client) UploadImage(ctx context.Context, filename string, data []byte) (string, error) {
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("image is %d bytes, max %d: %w", len(data), MaxImageBytes, domain.ErrValidation)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		return "", fmt.Errorf("create image part: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("write image part: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart body: %w", err)
	}

	var ref string
	if err := c.do(ctx, http.MethodPost, "/upload-image", nil, &buf, w.FormDataContentType(), &ref); err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return ref, nil
}
