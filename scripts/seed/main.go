package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"serenity/config"
)

// Seeds a week of hourly appointment slots so a fresh environment has
// something to book against. Existing slots for a date and start time
// are left untouched.
func main() {
	config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.AppConfig.DatabaseURL))
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer client.Disconnect(ctx)

	coll := client.Database(config.AppConfig.DatabaseName).Collection("appointments")

	now := time.Now()
	seeded := 0
	for day := 0; day < 7; day++ {
		date := now.AddDate(0, 0, day).Format("2006-01-02")
		for hour := 9; hour < 17; hour++ {
			start := fmt.Sprintf("%02d:00", hour)
			end := fmt.Sprintf("%02d:00", hour+1)

			filter := bson.M{"date": date, "startTime": start}
			update := bson.M{"$setOnInsert": bson.M{
				"date":      date,
				"startTime": start,
				"endTime":   end,
				"duration":  60,
				"isBooked":  false,
				"createdAt": time.Now(),
				"updatedAt": time.Now(),
			}}
			res, err := coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
			if err != nil {
				log.Fatalf("failed to seed slot %s %s: %v", date, start, err)
			}
			if res.UpsertedCount > 0 {
				seeded++
			}
		}
	}

	log.Printf("seed complete: %d new slots", seeded)
}
