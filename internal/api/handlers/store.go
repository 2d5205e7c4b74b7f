package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/models"
	"booking-system/internal/database"
	"booking-system/internal/database/repositories"
	"booking-system/internal/geo"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// ListStores lists stores filtered by city and name
func ListStores(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repositories.StoreFilter{
			City:   strings.TrimSpace(c.Query("city")),
			Query:  strings.TrimSpace(c.Query("q")),
			Limit:  queryInt(c, "limit", 50, 200),
			Offset: queryInt(c, "offset", 0, 0),
		}

		stores, err := services.StoreRepository().List(c.Request.Context(), filter)
		if err != nil {
			fail(c, services, err, "list stores")
			return
		}

		respond(c, http.StatusOK, "", gin.H{
			"stores": stores,
			"limit":  filter.Limit,
			"offset": filter.Offset,
		})
	}
}

// NearbyStores ranks stores within a radius of a point by distance
func NearbyStores(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
		if latErr != nil || lngErr != nil || !geo.ValidCoordinates(lat, lng) {
			respondError(c, models.BadRequest("Valid lat and lng are required").
				WithField("lat", "-90..90").WithField("lng", "-180..180"))
			return
		}

		radius := geo.DefaultRadiusKm
		if raw := c.Query("radius_km"); raw != "" {
			r, err := strconv.ParseFloat(raw, 64)
			if err != nil || r <= 0 {
				respondError(c, models.BadRequest("Invalid radius_km").WithField("radius_km", "must be positive"))
				return
			}
			radius = r
		}

		stores, err := services.StoreRepository().ListAll(c.Request.Context())
		if err != nil {
			fail(c, services, err, "list stores")
			return
		}

		nearby := []models.NearbyStore{}
		for _, store := range stores {
			distance := geo.HaversineKm(lat, lng, store.Latitude, store.Longitude)
			if distance <= radius {
				nearby = append(nearby, models.NearbyStore{Store: store, DistanceKm: distance})
			}
		}
		sort.SliceStable(nearby, func(i, j int) bool { return nearby[i].DistanceKm < nearby[j].DistanceKm })

		respond(c, http.StatusOK, "", gin.H{"stores": nearby, "radius_km": radius})
	}
}

// GetStore returns a store with its pictures and workers
func GetStore(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := paramID(c, "id")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		stores := services.StoreRepository()

		store, ok := loadStore(c, services, storeID)
		if !ok {
			return
		}
		pictures, err := stores.ListPictures(ctx, storeID)
		if err != nil {
			fail(c, services, err, "list pictures")
			return
		}
		workers, err := stores.ListWorkers(ctx, storeID)
		if err != nil {
			fail(c, services, err, "list workers")
			return
		}

		respond(c, http.StatusOK, "", models.StoreDetailResponse{Store: store, Pictures: pictures, Workers: workers})
	}
}

// ListStoreWorkers returns the workers of a store
func ListStoreWorkers(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeID, ok := paramID(c, "id")
		if !ok {
			return
		}
		if _, ok := loadStore(c, services, storeID); !ok {
			return
		}

		workers, err := services.StoreRepository().ListWorkers(c.Request.Context(), storeID)
		if err != nil {
			fail(c, services, err, "list workers")
			return
		}
		respond(c, http.StatusOK, "", gin.H{"workers": workers})
	}
}

// CreateStore opens a store owned by the calling worker
func CreateStore(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.StoreRequest
		if !bindJSON(c, &req) {
			return
		}
		if !validStoreLocation(c, req) {
			return
		}

		ctx := c.Request.Context()
		ownerID := currentUserID(c)
		store := storeFromRequest(req)
		store.OwnerID = ownerID

		err := database.WithTx(ctx, services.GetDB(), func(tx *sqlx.Tx) error {
			stores := services.StoreRepository().WithTx(tx)

			// owners hold a membership too, so this covers both cases
			if _, err := stores.GetMembership(ctx, ownerID); err == nil {
				return models.Conflict(models.ErrCodeAlreadyConnected, "You already own or work at a store")
			} else if !errors.Is(err, repositories.ErrNotFound) {
				return err
			}

			if err := stores.Create(ctx, store); err != nil {
				return err
			}
			return stores.AddWorker(ctx, store.ID, ownerID, database.StoreRoleOwner)
		})
		if errors.Is(err, repositories.ErrDuplicate) {
			respondError(c, models.Conflict(models.ErrCodeAlreadyConnected, "You already own or work at a store"))
			return
		}
		if err != nil {
			fail(c, services, err, "create store")
			return
		}

		createAuditLog(c, services, "STORE_CREATED", ownerID, fmt.Sprintf("store:%d", store.ID), store.Name)
		respond(c, http.StatusCreated, "Store created", store)
	}
}

// UpdateStore changes the store fields
func UpdateStore(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := ownedStore(c, services)
		if !ok {
			return
		}

		var req models.StoreRequest
		if !bindJSON(c, &req) {
			return
		}
		if !validStoreLocation(c, req) {
			return
		}

		updated := storeFromRequest(req)
		updated.ID = store.ID
		updated.OwnerID = store.OwnerID
		updated.CreatedAt = store.CreatedAt

		if err := services.StoreRepository().Update(c.Request.Context(), updated); err != nil {
			fail(c, services, err, "update store")
			return
		}

		createAuditLog(c, services, "STORE_UPDATED", store.OwnerID, fmt.Sprintf("store:%d", store.ID), "")
		respond(c, http.StatusOK, "Store updated", updated)
	}
}

// AddStorePicture attaches a picture URL to the store
func AddStorePicture(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := ownedStore(c, services)
		if !ok {
			return
		}

		var req models.StorePictureRequest
		if !bindJSON(c, &req) {
			return
		}

		picture := &database.StorePicture{StoreID: store.ID, URL: req.URL}
		if err := services.StoreRepository().AddPicture(c.Request.Context(), picture); err != nil {
			fail(c, services, err, "add picture")
			return
		}
		respond(c, http.StatusCreated, "Picture added", picture)
	}
}

// DeleteStorePicture removes a picture of the store
func DeleteStorePicture(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := ownedStore(c, services)
		if !ok {
			return
		}
		pictureID, ok := paramID(c, "pictureId")
		if !ok {
			return
		}

		err := services.StoreRepository().DeletePicture(c.Request.Context(), store.ID, pictureID)
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(c, models.NotFound(models.ErrCodeNotFound, "Picture not found"))
			return
		}
		if err != nil {
			fail(c, services, err, "delete picture")
			return
		}
		respond(c, http.StatusOK, "Picture removed", nil)
	}
}

// AddStoreWorker connects a worker, found by e-mail, to the store
func AddStoreWorker(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := ownedStore(c, services)
		if !ok {
			return
		}

		var req models.AddWorkerRequest
		if !bindJSON(c, &req) {
			return
		}

		ctx := c.Request.Context()
		worker, err := services.UserRepository().GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
		if errors.Is(err, repositories.ErrNotFound) || (err == nil && worker.Role != database.RoleWorker) {
			respondError(c, models.NotFound(models.ErrCodeWorkerNotFound, "No worker with this email"))
			return
		}
		if err != nil {
			fail(c, services, err, "load worker")
			return
		}

		err = services.StoreRepository().AddWorker(ctx, store.ID, worker.ID, database.StoreRoleWorker)
		if errors.Is(err, repositories.ErrDuplicate) {
			respondError(c, models.Conflict(models.ErrCodeAlreadyConnected, "Worker is already connected to a store"))
			return
		}
		if err != nil {
			fail(c, services, err, "add worker")
			return
		}

		createAuditLog(c, services, "STORE_WORKER_ADDED", store.OwnerID, fmt.Sprintf("store:%d", store.ID),
			fmt.Sprintf("worker_id=%d", worker.ID))
		respond(c, http.StatusCreated, "Worker added", gin.H{"store_id": store.ID, "worker_id": worker.ID})
	}
}

// RemoveStoreWorker disconnects a worker from the store
func RemoveStoreWorker(services interfaces.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		store, ok := ownedStore(c, services)
		if !ok {
			return
		}
		workerID, ok := paramID(c, "workerId")
		if !ok {
			return
		}
		if workerID == store.OwnerID {
			respondError(c, models.NewAPIError(models.ErrCodeCannotRemoveOwner, "The owner cannot leave their own store", http.StatusBadRequest))
			return
		}

		removed, err := services.BookingService().DisconnectWorker(c.Request.Context(), store.ID, workerID)
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(c, models.NotFound(models.ErrCodeWorkerNotFound, "Worker is not connected to this store"))
			return
		}
		if err != nil {
			fail(c, services, err, "remove worker")
			return
		}

		createAuditLog(c, services, "STORE_WORKER_REMOVED", store.OwnerID, fmt.Sprintf("store:%d", store.ID),
			fmt.Sprintf("worker_id=%d availability_removed=%d", workerID, removed))
		respond(c, http.StatusOK, "Worker removed", gin.H{"availability_removed": removed})
	}
}

func loadStore(c *gin.Context, services interfaces.Services, storeID int64) (*database.Store, bool) {
	store, err := services.StoreRepository().GetByID(c.Request.Context(), storeID)
	if errors.Is(err, repositories.ErrNotFound) {
		respondError(c, models.NotFound(models.ErrCodeStoreNotFound, "Store not found"))
		return nil, false
	}
	if err != nil {
		fail(c, services, err, "load store")
		return nil, false
	}
	return store, true
}

// ownedStore loads the :id store and checks that the caller owns it
func ownedStore(c *gin.Context, services interfaces.Services) (*database.Store, bool) {
	storeID, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	store, ok := loadStore(c, services, storeID)
	if !ok {
		return nil, false
	}
	if store.OwnerID != currentUserID(c) {
		respondError(c, models.Forbidden(models.ErrCodeNotStoreOwner, "Only the store owner can do this"))
		return nil, false
	}
	return store, true
}

func validStoreLocation(c *gin.Context, req models.StoreRequest) bool {
	if !geo.ValidCoordinates(req.Latitude, req.Longitude) {
		respondError(c, models.BadRequest("Invalid coordinates").
			WithField("latitude", "-90..90").WithField("longitude", "-180..180"))
		return false
	}
	return true
}

func storeFromRequest(req models.StoreRequest) *database.Store {
	return &database.Store{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Phone:       req.Phone,
		Email:       req.Email,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
}
