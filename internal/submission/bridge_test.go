package submission_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/session"
	"github.com/lucaprinsss/Participium-sub003/internal/submission"
)

type mockCreator struct {
	createFn func(ctx context.Context, req model.CreateReportRequest) (int64, error)
	requests []model.CreateReportRequest
}

func (m *mockCreator) CreateReport(ctx context.Context, req model.CreateReportRequest) (int64, error) {
	m.requests = append(m.requests, req)
	if m.createFn != nil {
		return m.createFn(ctx, req)
	}
	return 42, nil
}

func completeDraft() session.ReportDraft {
	cat := model.CategoryPublicLighting
	addr := "Piazza Castello, Torino"
	anon := false
	return session.ReportDraft{
		Location:    &model.Location{Latitude: 45.0703, Longitude: 7.6869},
		Address:     &addr,
		Title:       "Broken light",
		Description: "Lamp has been off for a week",
		Category:    &cat,
		Photos:      []model.Photo{{MediaType: "image/jpeg", DataURI: "data:image/jpeg;base64,/9j/"}},
		Anonymous:   &anon,

		SubmissionKey: "2110938548252184576",
	}
}

var _ = Describe("Bridge", func() {
	var (
		ctx     context.Context
		creator *mockCreator
		bridge  *submission.Bridge
	)

	BeforeEach(func() {
		ctx = context.Background()
		creator = &mockCreator{}
		bridge = submission.NewBridge(creator)
	})

	It("maps every draft field into the request", func() {
		id, err := bridge.Submit(ctx, 7, completeDraft())
		Expect(err).NotTo(HaveOccurred())
		Expect(id).To(Equal(int64(42)))

		Expect(creator.requests).To(HaveLen(1))
		req := creator.requests[0]
		Expect(req.Title).To(Equal("Broken light"))
		Expect(req.Description).To(Equal("Lamp has been off for a week"))
		Expect(req.Category).To(Equal(model.CategoryPublicLighting))
		Expect(req.Location).To(Equal(model.Location{Latitude: 45.0703, Longitude: 7.6869}))
		Expect(req.Address).To(HaveValue(Equal("Piazza Castello, Torino")))
		Expect(req.Photos).To(ConsistOf("data:image/jpeg;base64,/9j/"))
		Expect(req.IsAnonymous).To(BeFalse())
		Expect(req.UserID).To(Equal(int64(7)))
		Expect(req.IdempotencyKey).To(Equal("2110938548252184576"))
	})

	DescribeTable("refuses incomplete drafts without calling the creator",
		func(mutate func(d *session.ReportDraft)) {
			d := completeDraft()
			mutate(&d)

			_, err := bridge.Submit(ctx, 7, d)
			Expect(submission.KindOf(err)).To(Equal(submission.KindValidation))
			Expect(creator.requests).To(BeEmpty())
		},
		Entry("no location", func(d *session.ReportDraft) { d.Location = nil }),
		Entry("no title", func(d *session.ReportDraft) { d.Title = "" }),
		Entry("no description", func(d *session.ReportDraft) { d.Description = "" }),
		Entry("no category", func(d *session.ReportDraft) { d.Category = nil }),
		Entry("no photos", func(d *session.ReportDraft) { d.Photos = nil }),
		Entry("four photos", func(d *session.ReportDraft) {
			d.Photos = append(d.Photos, d.Photos[0], d.Photos[0], d.Photos[0])
		}),
	)

	It("passes classified failures through", func() {
		creator.createFn = func(context.Context, model.CreateReportRequest) (int64, error) {
			return 0, submission.NewError(submission.KindValidation, "Location is outside Turin city boundaries")
		}
		_, err := bridge.Submit(ctx, 7, completeDraft())
		Expect(submission.UserMessage(err)).To(Equal(submission.MsgOutsideBoundary))
	})

	It("classifies unknown failures as unspecified", func() {
		creator.createFn = func(context.Context, model.CreateReportRequest) (int64, error) {
			return 0, context.DeadlineExceeded
		}
		_, err := bridge.Submit(ctx, 7, completeDraft())
		Expect(submission.KindOf(err)).To(Equal(submission.KindUnspecified))
		Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
	})
})
