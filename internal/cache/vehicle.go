// Package cache provides a read-through Redis cache for single-vehicle
// fetches. Listings change rarely relative to how often they are viewed,
// so individual records are cached and invalidated on every mutation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Kariuki90/car-marketplace/types"
	"github.com/redis/go-redis/v9"
)

const vehicleTTL = 1 * time.Hour

// VehicleCache caches individual vehicle records in Redis.
type VehicleCache struct {
	client *redis.Client
}

// NewVehicleCache connects to Redis at addr and verifies the connection.
func NewVehicleCache(ctx context.Context, addr string) (*VehicleCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &VehicleCache{client: client}, nil
}

// Get returns the cached vehicle, or (nil, nil) on a miss.
func (c *VehicleCache) Get(ctx context.Context, id int) (*types.Vehicle, error) {
	data, err := c.client.Get(ctx, vehicleKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var vehicle types.Vehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// Set stores the vehicle under its id.
func (c *VehicleCache) Set(ctx context.Context, vehicle *types.Vehicle) error {
	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, vehicleKey(vehicle.ID), data, vehicleTTL).Err()
}

// Delete evicts the vehicle. Called on every mutation.
func (c *VehicleCache) Delete(ctx context.Context, id int) error {
	return c.client.Del(ctx, vehicleKey(id)).Err()
}

// Close closes the underlying Redis client.
func (c *VehicleCache) Close() error {
	return c.client.Close()
}

func vehicleKey(id int) string {
	return fmt.Sprintf("vehicle:%d", id)
}
