package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/errgroup"
)

// RawStockResponse is the stock feed body before normalization. Fields are
// kept raw so that a missing or wrongly typed value is repaired by the
// normalizer instead of failing the decode.
type RawStockResponse struct {
	Status    json.RawMessage `json:"status"`
	UpdatedAt json.RawMessage `json:"updated_at"`
	Data      json.RawMessage `json:"data"`
}

// RawWeatherResponse is the weather feed body before normalization.
type RawWeatherResponse struct {
	Icon              json.RawMessage `json:"icon"`
	Description       json.RawMessage `json:"description"`
	VisualCue         json.RawMessage `json:"visualCue"`
	CropBonuses       json.RawMessage `json:"cropBonuses"`
	Mutations         json.RawMessage `json:"mutations"`
	Rarity            json.RawMessage `json:"rarity"`
	UpdatedAt         json.RawMessage `json:"updatedAt"`
	CurrentWeather    json.RawMessage `json:"currentWeather"`
	WeatherType       json.RawMessage `json:"weatherType"`
	EffectDescription json.RawMessage `json:"effectDescription"`
}

var errNotAnObject = errors.New("body is not a JSON object")

// FeedFetcher retrieves both feeds for one poll cycle.
type FeedFetcher interface {
	FetchAll(ctx context.Context) (*RawStockResponse, *RawWeatherResponse, error)
}

type FeedClient struct {
	client     *resty.Client
	stockURL   string
	weatherURL string
}

func NewFeedClient(cfg Config) *FeedClient {
	client := resty.New()
	client.SetTimeout(cfg.RequestTimeout)
	client.SetHeader("User-Agent", cfg.UserAgent)
	client.SetHeader("Accept", "application/json")

	return &FeedClient{
		client:     client,
		stockURL:   cfg.StockURL,
		weatherURL: cfg.WeatherURL,
	}
}

func (f *FeedClient) FetchStock(ctx context.Context) (*RawStockResponse, error) {
	var raw RawStockResponse
	if err := f.getJSON(ctx, SourceStock, f.stockURL, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

func (f *FeedClient) FetchWeather(ctx context.Context) (*RawWeatherResponse, error) {
	var raw RawWeatherResponse
	if err := f.getJSON(ctx, SourceWeather, f.weatherURL, &raw); err != nil {
		return nil, err
	}
	return &raw, nil
}

// FetchAll requests both feeds concurrently and waits for both to settle.
// Any failure fails the whole cycle.
func (f *FeedClient) FetchAll(ctx context.Context) (*RawStockResponse, *RawWeatherResponse, error) {
	var (
		stock   *RawStockResponse
		weather *RawWeatherResponse
		g       errgroup.Group
	)

	g.Go(func() error {
		var err error
		stock, err = f.FetchStock(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		weather, err = f.FetchWeather(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return stock, weather, nil
}

func (f *FeedClient) getJSON(ctx context.Context, source FeedSource, url string, out interface{}) error {
	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		log.Printf("[Feeds] %s request failed: %v", source, err)
		return &NetworkFailureError{Source: source, Err: err}
	}

	if !resp.IsSuccess() {
		log.Printf("[Feeds] %s returned status %d", source, resp.StatusCode())
		return &FeedUnavailableError{Source: source, Status: resp.StatusCode()}
	}

	if body := bytes.TrimSpace(resp.Body()); len(body) == 0 || body[0] != '{' {
		log.Printf("[Feeds] %s payload is not a JSON object", source)
		return &MalformedPayloadError{Source: source, Err: errNotAnObject}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		log.Printf("[Feeds] %s payload could not be decoded: %v", source, err)
		return &MalformedPayloadError{Source: source, Err: err}
	}

	log.Printf("[Feeds] %s fetched in %v (%d bytes)", source, time.Since(start).Round(time.Millisecond), len(resp.Body()))
	return nil
}
