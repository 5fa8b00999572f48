package property

import (
	"context"
	"errors"
	"strings"
	"testing"

	propertyRepo "github.com/outrigger999/rental-recon/database/repository/property"
	"github.com/outrigger999/rental-recon/models"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	properties map[string]*models.Property
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{properties: map[string]*models.Property{}}
}

func (r *fakeRepo) Create(ctx context.Context, p *models.Property) error {
	cp := *p
	r.properties[p.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, propertyRepo.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeRepo) List(ctx context.Context, skip, limit int64) ([]models.Property, error) {
	out := []models.Property{}
	for _, p := range r.properties {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeRepo) Update(ctx context.Context, p *models.Property) error {
	if _, ok := r.properties[p.ID]; !ok {
		return propertyRepo.ErrNotFound
	}
	cp := *p
	r.properties[p.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateTravelTimes(ctx context.Context, id string, times map[models.TravelSlot]*float64) error {
	p, ok := r.properties[id]
	if !ok {
		return propertyRepo.ErrNotFound
	}
	p.TravelTime830AM = times[models.Slot830AM]
	p.TravelTime930AM = times[models.Slot930AM]
	p.TravelTimeMidday = times[models.SlotMidday]
	p.TravelTime630PM = times[models.Slot630PM]
	p.TravelTime730PM = times[models.Slot730PM]
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.properties[id]; !ok {
		return propertyRepo.ErrNotFound
	}
	delete(r.properties, id)
	return nil
}

func (r *fakeRepo) AddImage(ctx context.Context, propertyID string, img models.PropertyImage) error {
	p, ok := r.properties[propertyID]
	if !ok {
		return propertyRepo.ErrNotFound
	}
	p.Images = append(p.Images, img)
	return nil
}

func (r *fakeRepo) DemoteMainImage(ctx context.Context, propertyID string) error {
	p, ok := r.properties[propertyID]
	if !ok {
		return propertyRepo.ErrNotFound
	}
	for i := range p.Images {
		p.Images[i].IsMain = false
	}
	return nil
}

func (r *fakeRepo) GetImage(ctx context.Context, propertyID, imageID string) (*models.PropertyImage, error) {
	p, ok := r.properties[propertyID]
	if !ok {
		return nil, propertyRepo.ErrNotFound
	}
	for _, img := range p.Images {
		if img.ID == imageID {
			return &img, nil
		}
	}
	return nil, propertyRepo.ErrNotFound
}

func (r *fakeRepo) DeleteImage(ctx context.Context, propertyID, imageID string) error {
	p, ok := r.properties[propertyID]
	if !ok {
		return propertyRepo.ErrNotFound
	}
	for i, img := range p.Images {
		if img.ID == imageID {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			return nil
		}
	}
	return propertyRepo.ErrNotFound
}

func (r *fakeRepo) AddNote(ctx context.Context, propertyID string, note models.PropertyNote) error {
	p, ok := r.properties[propertyID]
	if !ok {
		return propertyRepo.ErrNotFound
	}
	p.Notes = append(p.Notes, note)
	return nil
}

func (r *fakeRepo) ListNotes(ctx context.Context, propertyID string) ([]models.PropertyNote, error) {
	p, ok := r.properties[propertyID]
	if !ok {
		return nil, propertyRepo.ErrNotFound
	}
	return p.Notes, nil
}

func (r *fakeRepo) DeleteNote(ctx context.Context, propertyID, noteID string) error {
	p, ok := r.properties[propertyID]
	if !ok {
		return propertyRepo.ErrNotFound
	}
	for i, n := range p.Notes {
		if n.ID == noteID {
			p.Notes = append(p.Notes[:i], p.Notes[i+1:]...)
			return nil
		}
	}
	return propertyRepo.ErrNotFound
}

// fakeSettings returns a fixed origin address.
type fakeSettings struct {
	origin string
}

func (s *fakeSettings) Get(ctx context.Context) (*models.Settings, error) {
	return &models.Settings{ID: "settings", OriginAddress: s.origin}, nil
}

func (s *fakeSettings) UpdateOrigin(ctx context.Context, originAddress string) (*models.Settings, error) {
	s.origin = originAddress
	return &models.Settings{ID: "settings", OriginAddress: originAddress}, nil
}

// fakeTravel returns a canned report and records the call.
type fakeTravel struct {
	report      *models.TravelTimeReport
	err         error
	gotOrigin   string
	gotDest     string
	gotTuesday  bool
	gotOffset   int
	timesCalled int
}

func (t *fakeTravel) Estimate(ctx context.Context, origin, destination string, useTuesday bool, dayOffset int) (*models.TravelTimeReport, error) {
	t.timesCalled++
	t.gotOrigin = origin
	t.gotDest = destination
	t.gotTuesday = useTuesday
	t.gotOffset = dayOffset
	if t.err != nil {
		return nil, t.err
	}
	return t.report, nil
}

func reportWith(times map[models.TravelSlot]float64, anomalySlot models.TravelSlot) *models.TravelTimeReport {
	report := &models.TravelTimeReport{
		Estimates:      map[models.TravelSlot]*models.SlotEstimate{},
		CalculationDay: "next Monday",
	}
	for slot, v := range times {
		report.Estimates[slot] = &models.SlotEstimate{Typical: v, Conservative: v}
	}
	if anomalySlot != "" {
		report.Estimates[anomalySlot].Anomaly = true
		report.Estimates[anomalySlot].Note = "Unusually high traffic detected - possibly an incident"
	}
	return report
}

func seedProperty(repo *fakeRepo, id string) {
	old := 99.0
	repo.properties[id] = &models.Property{
		ID:              id,
		Address:         "123 Main St",
		PropertyType:    "Home",
		TravelTime830AM: &old,
	}
}

func TestCalculateTravelTimesPersistsConservative(t *testing.T) {
	repo := newFakeRepo()
	seedProperty(repo, "p1")
	travel := &fakeTravel{report: reportWith(map[models.TravelSlot]float64{
		models.Slot830AM:  45,
		models.Slot930AM:  38,
		models.SlotMidday: 30,
		models.Slot630PM:  52,
		models.Slot730PM:  41,
	}, "")}
	svc := &DefaultService{Repo: repo, Settings: &fakeSettings{origin: "456 Home Ave"}, Travel: travel}

	updated, report, err := svc.CalculateTravelTimes(context.Background(), "p1", true, 2)
	if err != nil {
		t.Fatalf("CalculateTravelTimes returned error: %v", err)
	}
	if travel.gotOrigin != "456 Home Ave" || travel.gotDest != "123 Main St" {
		t.Errorf("estimate called with %q -> %q", travel.gotOrigin, travel.gotDest)
	}
	if !travel.gotTuesday || travel.gotOffset != 2 {
		t.Errorf("estimate called with tuesday=%t offset=%d, want true, 2", travel.gotTuesday, travel.gotOffset)
	}
	if updated.TravelTime830AM == nil || *updated.TravelTime830AM != 45 {
		t.Errorf("830am = %v, want 45", updated.TravelTime830AM)
	}
	if updated.TravelTime630PM == nil || *updated.TravelTime630PM != 52 {
		t.Errorf("630pm = %v, want 52", updated.TravelTime630PM)
	}
	if len(updated.Notes) != 0 {
		t.Errorf("notes = %v, want none without anomalies", updated.Notes)
	}
	if report == nil || report.CalculationDay != "next Monday" {
		t.Errorf("report = %+v", report)
	}
}

func TestCalculateTravelTimesClearsAbsentSlots(t *testing.T) {
	repo := newFakeRepo()
	seedProperty(repo, "p1")
	// Only two slots produced values; the stale 08:30 estimate must be cleared.
	travel := &fakeTravel{report: reportWith(map[models.TravelSlot]float64{
		models.SlotMidday: 30,
		models.Slot730PM:  41,
	}, "")}
	svc := &DefaultService{Repo: repo, Settings: &fakeSettings{origin: "456 Home Ave"}, Travel: travel}

	updated, _, err := svc.CalculateTravelTimes(context.Background(), "p1", false, 0)
	if err != nil {
		t.Fatalf("CalculateTravelTimes returned error: %v", err)
	}
	if updated.TravelTime830AM != nil {
		t.Errorf("830am = %v, want cleared", *updated.TravelTime830AM)
	}
	if updated.TravelTimeMidday == nil || *updated.TravelTimeMidday != 30 {
		t.Errorf("midday = %v, want 30", updated.TravelTimeMidday)
	}
}

func TestCalculateTravelTimesRecordsAnomalyNote(t *testing.T) {
	repo := newFakeRepo()
	seedProperty(repo, "p1")
	travel := &fakeTravel{report: reportWith(map[models.TravelSlot]float64{
		models.Slot830AM:  120,
		models.Slot930AM:  38,
		models.SlotMidday: 30,
		models.Slot630PM:  52,
		models.Slot730PM:  41,
	}, models.Slot830AM)}
	svc := &DefaultService{Repo: repo, Settings: &fakeSettings{origin: "456 Home Ave"}, Travel: travel}

	updated, _, err := svc.CalculateTravelTimes(context.Background(), "p1", false, 0)
	if err != nil {
		t.Fatalf("CalculateTravelTimes returned error: %v", err)
	}
	if len(updated.Notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(updated.Notes))
	}
	content := updated.Notes[0].Content
	if !strings.Contains(content, "Travel time anomalies detected on next Monday") {
		t.Errorf("note content = %q", content)
	}
	if !strings.Contains(content, string(models.Slot830AM)) {
		t.Errorf("note does not name the flagged slot: %q", content)
	}
}

func TestCalculateTravelTimesErrors(t *testing.T) {
	t.Run("property not found", func(t *testing.T) {
		svc := &DefaultService{Repo: newFakeRepo(), Settings: &fakeSettings{origin: "x"}, Travel: &fakeTravel{}}
		_, _, err := svc.CalculateTravelTimes(context.Background(), "missing", false, 0)
		if !errors.Is(err, propertyRepo.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("origin not set", func(t *testing.T) {
		repo := newFakeRepo()
		seedProperty(repo, "p1")
		svc := &DefaultService{Repo: repo, Settings: &fakeSettings{}, Travel: &fakeTravel{}}
		_, _, err := svc.CalculateTravelTimes(context.Background(), "p1", false, 0)
		if !errors.Is(err, ErrOriginNotSet) {
			t.Errorf("err = %v, want ErrOriginNotSet", err)
		}
	})

	t.Run("estimate failure leaves stored values", func(t *testing.T) {
		repo := newFakeRepo()
		seedProperty(repo, "p1")
		travel := &fakeTravel{err: errors.New("network down")}
		svc := &DefaultService{Repo: repo, Settings: &fakeSettings{origin: "x"}, Travel: travel}

		_, _, err := svc.CalculateTravelTimes(context.Background(), "p1", false, 0)
		if err == nil {
			t.Fatal("CalculateTravelTimes succeeded with a failing estimator")
		}
		p, _ := repo.GetByID(context.Background(), "p1")
		if p.TravelTime830AM == nil || *p.TravelTime830AM != 99 {
			t.Errorf("stored 830am = %v, want untouched 99", p.TravelTime830AM)
		}
	})
}

func TestCreateRunsBestEffortTravelCalculation(t *testing.T) {
	repo := newFakeRepo()
	travel := &fakeTravel{report: reportWith(map[models.TravelSlot]float64{
		models.SlotMidday: 30,
	}, "")}
	svc := &DefaultService{Repo: repo, Settings: &fakeSettings{origin: "456 Home Ave"}, Travel: travel}

	created, err := svc.Create(context.Background(), &models.Property{
		Address:      "123 Main St",
		PropertyType: "Apartment",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" {
		t.Error("created property has no ID")
	}
	if travel.timesCalled != 1 {
		t.Errorf("estimate called %d times, want 1", travel.timesCalled)
	}
	if created.TravelTimeMidday == nil || *created.TravelTimeMidday != 30 {
		t.Errorf("midday = %v, want 30", created.TravelTimeMidday)
	}
}

func TestCreateSurvivesTravelFailure(t *testing.T) {
	repo := newFakeRepo()
	travel := &fakeTravel{err: errors.New("routing down")}
	svc := &DefaultService{Repo: repo, Settings: &fakeSettings{origin: "456 Home Ave"}, Travel: travel}

	created, err := svc.Create(context.Background(), &models.Property{
		Address:      "123 Main St",
		PropertyType: "Home",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.TravelTime830AM != nil {
		t.Errorf("830am = %v, want nil after failed estimate", *created.TravelTime830AM)
	}
}

func TestCreateRequiresAddressAndType(t *testing.T) {
	svc := &DefaultService{Repo: newFakeRepo(), Settings: &fakeSettings{}, Travel: &fakeTravel{}}
	if _, err := svc.Create(context.Background(), &models.Property{PropertyType: "Home"}); err == nil {
		t.Error("Create accepted a property without an address")
	}
	if _, err := svc.Create(context.Background(), &models.Property{Address: "x"}); err == nil {
		t.Error("Create accepted a property without a type")
	}
}

func TestUpdatePreservesCalculatedFields(t *testing.T) {
	repo := newFakeRepo()
	seedProperty(repo, "p1")
	repo.properties["p1"].Images = []models.PropertyImage{{ID: "img1", IsMain: true}}
	repo.properties["p1"].Notes = []models.PropertyNote{{ID: "n1", Content: "good light"}}
	svc := &DefaultService{Repo: repo, Settings: &fakeSettings{}, Travel: &fakeTravel{}}

	updated, err := svc.Update(context.Background(), &models.Property{
		ID:            "p1",
		Address:       "789 New St",
		PropertyType:  "Townhome",
		PricePerMonth: 2500,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Address != "789 New St" || updated.PropertyType != "Townhome" {
		t.Errorf("updated fields not applied: %+v", updated)
	}
	if updated.TravelTime830AM == nil || *updated.TravelTime830AM != 99 {
		t.Error("travel time lost on update")
	}
	if len(updated.Images) != 1 || len(updated.Notes) != 1 {
		t.Errorf("images/notes lost on update: %d images, %d notes", len(updated.Images), len(updated.Notes))
	}
}

func TestPatchAppliesOnlyProvidedFields(t *testing.T) {
	repo := newFakeRepo()
	seedProperty(repo, "p1")
	svc := &DefaultService{Repo: repo, Settings: &fakeSettings{}, Travel: &fakeTravel{}}

	v := 55.0
	contacts := "agent@example.com"
	updated, err := svc.Patch(context.Background(), "p1", models.PropertyPatch{
		TravelTime930AM: &v,
		Contacts:        &contacts,
	})
	if err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if updated.TravelTime930AM == nil || *updated.TravelTime930AM != 55 {
		t.Errorf("930am = %v, want 55", updated.TravelTime930AM)
	}
	if updated.Contacts != contacts {
		t.Errorf("contacts = %q, want %q", updated.Contacts, contacts)
	}
	if updated.TravelTime830AM == nil || *updated.TravelTime830AM != 99 {
		t.Error("830am changed by a patch that did not name it")
	}
}
