package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	catsvc "cribz-gateway/internal/application/catalog"
	setsvc "cribz-gateway/internal/application/settings"
	"cribz-gateway/internal/application/view"
	"cribz-gateway/internal/domain"
	"cribz-gateway/internal/middleware"
	"cribz-gateway/internal/pkg/constants"
	"cribz-gateway/internal/pkg/response"
	"cribz-gateway/internal/pkg/validation"
	"cribz-gateway/internal/upstream"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves the listings-management surface: the reconcile/render
// cycle, cache-only filtering, and the write-through mutations.
type Handlers struct {
	Service   *catsvc.Service
	Projector *view.Projector
	Settings  *setsvc.Service
}

func (h *Handlers) options(c *fiber.Ctx) view.Options {
	u := middleware.GetUser(c)
	return view.Options{
		Privileged: u != nil && u.Role == constants.RoleAdmin,
		Currency:   h.Settings.Currency(c.Context(), viewerID(c)),
	}
}

// viewerID keys per-viewer state: the session user id when one is attached,
// the token digest otherwise.
func viewerID(c *fiber.Ctx) string {
	if u := middleware.GetUser(c); u != nil && u.ID != "" {
		return u.ID
	}
	return catsvc.ViewerKey(middleware.Token(c))
}

// GET /api/v1/catalog/my-listings — full reconcile of the viewer's listings
// and hotels (auto-publish pass included), projected to a render directive.
func (h *Handlers) MyListings(c *fiber.Ctx) error {
	token := middleware.Token(c)
	items, err := h.Service.Reconcile(c.Context(), token, upstream.ScopeMine, true)
	if err != nil {
		return fetchError(c, err)
	}
	directive := h.Projector.Project(catsvc.ViewerKey(token), items, h.options(c))
	return response.Success(c, "Listings fetched successfully", directive, fiber.Map{"count": len(items)})
}

// GET /api/v1/catalog/filter?status=S — re-projects the cached collection
// through a status predicate. Never re-fetches.
func (h *Handlers) Filter(c *fiber.Ctx) error {
	token := middleware.Token(c)
	predicate := c.Query("status", catsvc.PredicateAll)
	items := h.Service.Filter(token, predicate)
	directive := h.Projector.Project(catsvc.ViewerKey(token), items, h.options(c))
	return response.Success(c, "Listings filtered", directive, fiber.Map{"filter": predicate, "count": len(items)})
}

// GET /api/v1/catalog/listing/:id — detail for the edit modal; degrades to
// the rendered snapshot when the upstream detail read fails.
func (h *Handlers) Detail(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.Error(c, "id is required", fiber.StatusBadRequest, nil)
	}
	d, err := h.Service.Detail(c.Context(), middleware.Token(c), id)
	if err != nil {
		if upstream.IsNotFound(err) {
			return response.NotFound(c, "Item not found")
		}
		return response.Error(c, "Could not load item for edit", fiber.StatusBadGateway, nil)
	}
	return response.Success(c, "Item fetched", d, fiber.Map{"degraded": d.Degraded})
}

// POST /api/v1/catalog/create-listing — validates the add-listing form and
// forwards it upstream as multipart, then resynchronizes.
func (h *Handlers) Create(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.Error(c, "Invalid form submission", fiber.StatusBadRequest, nil)
	}
	missing, invalid := validation.CheckListingForm(form.Value)
	if len(missing) > 0 {
		return response.Error(c, "Please fill in all mandatory fields", fiber.StatusBadRequest,
			fiber.Map{"missing": missing})
	}
	if len(invalid) > 0 {
		return response.Error(c, "Invalid numeric field values", fiber.StatusBadRequest,
			fiber.Map{"invalid": invalid})
	}

	body, contentType, err := rebuildMultipart(form)
	if err != nil {
		return response.Error(c, "Invalid form submission", fiber.StatusBadRequest, nil)
	}

	token := middleware.Token(c)
	items, err := h.Service.Create(c.Context(), token, contentType, body, upstream.ScopeMine)
	if err != nil {
		if errors.Is(err, catsvc.ErrFetchFailed) {
			// Created upstream but the resync read failed; report the save.
			return response.SuccessCreated(c, "Listing published successfully!", nil)
		}
		return upstreamError(c, "Failed to save listing", err)
	}
	directive := h.Projector.Project(catsvc.ViewerKey(token), items, h.options(c))
	return response.SuccessCreated(c, "Listing published successfully!", directive)
}

// PUT /api/v1/catalog/edit-listing/:id
func (h *Handlers) Edit(c *fiber.Ctx) error {
	id := c.Params("id")
	var fields map[string]interface{}
	if err := json.Unmarshal(c.Body(), &fields); err != nil || len(fields) == 0 {
		return response.Error(c, "Invalid request body", fiber.StatusBadRequest, nil)
	}
	return h.mutate(c, "Listing updated!", func(token string) ([]domain.UnifiedItem, error) {
		return h.Service.Edit(c.Context(), token, id, fields, upstream.ScopeMine, true)
	})
}

// DELETE /api/v1/catalog/delete-listing/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.mutate(c, "Item deleted!", func(token string) ([]domain.UnifiedItem, error) {
		return h.Service.Delete(c.Context(), token, id, upstream.ScopeMine, true)
	})
}

// PATCH /api/v1/catalog/approve/:id
func (h *Handlers) Approve(c *fiber.Ctx) error {
	id := c.Params("id")
	return h.mutate(c, "Item approved and published!", func(token string) ([]domain.UnifiedItem, error) {
		return h.Service.Approve(c.Context(), token, id, upstream.ScopeMine, true)
	})
}

// PATCH /api/v1/catalog/decline/:id — body carries the rejection reason.
func (h *Handlers) Decline(c *fiber.Ctx) error {
	id := c.Params("id")
	var body struct {
		RejectionReason string `json:"rejectionReason"`
	}
	_ = c.BodyParser(&body)
	return h.mutate(c, "Item declined and moved to draft!", func(token string) ([]domain.UnifiedItem, error) {
		return h.Service.Decline(c.Context(), token, id, body.RejectionReason, upstream.ScopeMine, true)
	})
}

func (h *Handlers) mutate(c *fiber.Ctx, okMessage string, op func(token string) ([]domain.UnifiedItem, error)) error {
	token := middleware.Token(c)
	items, err := op(token)
	if err != nil {
		if errors.Is(err, catsvc.ErrNotFound) {
			return response.NotFound(c, "Item not found")
		}
		if errors.Is(err, catsvc.ErrFetchFailed) {
			// The write landed; only the resync read failed.
			return response.Success(c, okMessage, nil, fiber.Map{"resynced": false})
		}
		return upstreamError(c, "Could not complete the operation", err)
	}
	directive := h.Projector.Project(catsvc.ViewerKey(token), items, h.options(c))
	return response.Success(c, okMessage, directive, fiber.Map{"count": len(items)})
}

func fetchError(c *fiber.Ctx, err error) error {
	return response.Error(c, "Could not load listings: "+rootMessage(err), fiber.StatusBadGateway, nil)
}

func upstreamError(c *fiber.Ctx, message string, err error) error {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		return response.Error(c, message, fiber.StatusBadGateway, fiber.Map{"upstreamStatus": se.StatusCode})
	}
	return response.Error(c, message, fiber.StatusBadGateway, nil)
}

func rootMessage(err error) string {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("upstream returned status %d", se.StatusCode)
	}
	return err.Error()
}

// rebuildMultipart re-encodes a parsed multipart form, fields then files, so
// the upstream receives the same shape the browser used to send.
func rebuildMultipart(form *multipart.Form) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, values := range form.Value {
		for _, v := range values {
			if err := w.WriteField(name, v); err != nil {
				return nil, "", err
			}
		}
	}
	for name, files := range form.File {
		for _, fh := range files {
			part, err := w.CreateFormFile(name, fh.Filename)
			if err != nil {
				return nil, "", err
			}
			f, err := fh.Open()
			if err != nil {
				return nil, "", err
			}
			if _, err := io.Copy(part, f); err != nil {
				f.Close()
				return nil, "", err
			}
			f.Close()
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
