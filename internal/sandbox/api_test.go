package sandbox_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mesh-intelligence/dustnbones/internal/httpx"
	"github.com/mesh-intelligence/dustnbones/internal/resource"
	"github.com/mesh-intelligence/dustnbones/internal/store"
	"github.com/mesh-intelligence/dustnbones/pkg/types"
)

func names[T any](items []T, name func(T) string) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = name(it)
	}
	return out
}

func specieName(s types.Specie) string { return s.Name }
func boneName(b types.Bone) string     { return b.Name }

var _ = Describe("species endpoints", func() {
	var species *resource.Species

	BeforeEach(func() {
		species = resource.NewSpecies(client, nil)
	})

	It("lists the seeded species with a count", func(ctx context.Context) {
		resp, err := species.GetAll(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Success).To(BeTrue())
		Expect(resp.Total).To(Equal(3))
		Expect(resp.Pagination).To(BeNil())
		Expect(names(resp.Items, specieName)).To(Equal([]string{"Dog", "Cat", "Horse"}))
	})

	It("pages and searches", func(ctx context.Context) {
		resp, err := species.GetAll(ctx, url.Values{"page": {"2"}, "limit": {"2"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(Equal(3))
		Expect(names(resp.Items, specieName)).To(Equal([]string{"Horse"}))
		Expect(resp.Pagination).To(Equal(&types.Pagination{
			Page: 2, Limit: 2, TotalPages: 2, HasPrev: true,
		}))

		resp, err = species.GetAll(ctx, url.Values{"search": {"FELIS"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(names(resp.Items, specieName)).To(Equal([]string{"Cat"}))
	})

	It("rejects a malformed page", func(ctx context.Context) {
		_, err := species.GetAll(ctx, url.Values{"page": {"zero"}})
		var httpErr *httpx.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("rejects a page whose offset does not fit", func(ctx context.Context) {
		_, err := species.GetAll(ctx, url.Values{"limit": {"100"}, "page": {"9223372036854775807"}})
		var httpErr *httpx.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("returns an empty page past the end", func(ctx context.Context) {
		resp, err := species.GetAll(ctx, url.Values{"limit": {"100"}, "page": {"1000"}})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Items).To(BeEmpty())
		Expect(resp.Pagination.Page).To(Equal(1000))
		Expect(resp.Pagination.HasNext).To(BeFalse())
	})

	It("creates, reads, updates, and deletes a specie", func(ctx context.Context) {
		created, err := species.Create(ctx, types.SpecieInput{Name: "Cow", ScientificName: "Bos taurus"})
		Expect(err).NotTo(HaveOccurred())
		Expect(created.Success).To(BeTrue())
		Expect(created.Data.Name).To(Equal("Cow"))
		id := created.Data.ID

		got, err := species.GetByID(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Data.ScientificName).To(Equal("Bos taurus"))

		updated, err := species.Update(ctx, id, types.SpecieInput{Description: "Domestic cattle"})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Data.Name).To(Equal("Cow"))
		Expect(updated.Data.Description).To(Equal("Domestic cattle"))

		deleted, err := species.Delete(ctx, id)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted.Success).To(BeTrue())
		Expect(deleted.Data).To(BeNil())

		_, err = species.GetByID(ctx, id)
		var httpErr *httpx.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.NotFound()).To(BeTrue())
		Expect(httpErr.Message()).To(Equal("resource not found"))
	})

	It("requires a name", func(ctx context.Context) {
		_, err := species.Create(ctx, types.SpecieInput{})
		var httpErr *httpx.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode).To(Equal(http.StatusBadRequest))
	})
})

var _ = Describe("bones endpoints", func() {
	var bones *resource.Bones

	BeforeEach(func() {
		bones = resource.NewBones(client, nil)
	})

	It("lists bones of one specie", func(ctx context.Context) {
		resp, err := bones.GetAllBySpecie(ctx, "1", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Total).To(Equal(3))
		Expect(names(resp.Items, boneName)).To(Equal([]string{"Femur", "Humerus", "Mandible"}))
		for _, b := range resp.Items {
			Expect(b.SpecieID).To(Equal(types.ID("1")))
		}
	})

	It("returns 404 for bones of an unknown specie", func(ctx context.Context) {
		_, err := bones.GetAllBySpecie(ctx, "999", nil)
		var httpErr *httpx.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.NotFound()).To(BeTrue())
	})

	It("rejects a bone for an unknown specie", func(ctx context.Context) {
		_, err := bones.Create(ctx, types.BoneInput{Name: "Rib", SpecieID: "999"})
		var httpErr *httpx.HTTPError
		Expect(errors.As(err, &httpErr)).To(BeTrue())
		Expect(httpErr.StatusCode).To(Equal(http.StatusBadRequest))
	})

	It("drops bones with their specie", func(ctx context.Context) {
		species := resource.NewSpecies(client, nil)
		_, err := species.Delete(ctx, "1")
		Expect(err).NotTo(HaveOccurred())

		resp, err := bones.GetAll(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(names(resp.Items, boneName)).NotTo(ContainElement("Femur"))
	})
})

var _ = Describe("stores against the sandbox", func() {
	It("mirrors a listing and removes deleted bones locally", func(ctx context.Context) {
		bones := store.NewBonesStore(resource.NewBones(client, nil))

		items, err := bones.GetAllBySpecie(ctx, "1", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(items).To(HaveLen(3))
		Expect(bones.Total()).To(Equal(3))

		first := items[0].ID
		_, err = bones.Remove(ctx, first)
		Expect(err).NotTo(HaveOccurred())
		Expect(bones.BonesList()).To(HaveLen(2))
		Expect(bones.Loading()).To(BeFalse())
	})

	It("records a 404 as the store error", func(ctx context.Context) {
		species := store.NewSpeciesStore(resource.NewSpecies(client, nil))
		_, err := species.GetByID(ctx, "404")
		Expect(err).To(HaveOccurred())
		Expect(species.Err()).To(BeIdenticalTo(err))
		Expect(species.CurrentSpecie()).To(BeNil())
		Expect(species.Loading()).To(BeFalse())
	})
})

var _ = Describe("service endpoints", func() {
	It("answers the heartbeat", func() {
		resp, err := http.Get(server.URL + "/health")
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
	})

	It("answers unknown routes with the error envelope", func() {
		resp, err := http.Get(server.URL + "/api/nowhere")
		Expect(err).NotTo(HaveOccurred())
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"success":false,"message":"route not found"}`))
	})
})
