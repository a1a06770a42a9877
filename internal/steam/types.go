package steam

import (
	"encoding/json/jsontext"
	"strconv"
)

// AppDetails is the subset of the appdetails "data" object the catalog reads.
// Fields Steam sends with inconsistent types (required_age, pc_requirements) are left out.
type AppDetails struct {
	Name                string         `json:"name" validate:"required"`
	ShortDescription    string         `json:"short_description"`
	DetailedDescription string         `json:"detailed_description"`
	HeaderImage         string         `json:"header_image"`
	Background          string         `json:"background"`
	Developers          []string       `json:"developers"`
	Publishers          []string       `json:"publishers"`
	Platforms           Platforms      `json:"platforms"`
	Genres              []Description  `json:"genres"`
	Categories          []Description  `json:"categories"`
	Metacritic          *Metacritic    `json:"metacritic"`
	PriceOverview       *PriceOverview `json:"price_overview"`
	ReleaseDate         ReleaseDate    `json:"release_date"`
	Screenshots         []Screenshot   `json:"screenshots"`
	Movies              []Movie        `json:"movies"`
}

// Platforms holds the three OS availability flags.
type Platforms struct {
	Windows bool `json:"windows"`
	Mac     bool `json:"mac"`
	Linux   bool `json:"linux"`
}

// Description is the {description} shape shared by genres and categories.
type Description struct {
	Description string `json:"description"`
}

// Metacritic carries the critic score (0-100).
type Metacritic struct {
	Score int `json:"score"`
}

// PriceOverview prices are in minor units (cents).
type PriceOverview struct {
	Currency string `json:"currency"`
	Initial  int    `json:"initial"`
	Final    int    `json:"final"`
}

// ReleaseDate is Steam's free-form release date.
type ReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

// Screenshot is a single store screenshot.
type Screenshot struct {
	PathFull string `json:"path_full"`
}

// Movie is a store trailer.
type Movie struct {
	Webm struct {
		Max string `json:"max"`
	} `json:"webm"`
}

// appDetailsEnvelope is one entry of the appdetails response map.
type appDetailsEnvelope struct {
	Success bool           `json:"success"`
	Data    jsontext.Value `json:"data"`
}

// Item is an entry of a store list (featured bucket, search hit).
type Item struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AppID returns the item's id in the string form the catalog uses.
func (i Item) AppID() string {
	return strconv.Itoa(i.ID)
}

// Bucket is a named list inside featuredcategories.
type Bucket struct {
	Items []Item `json:"items"`
}

// FeaturedCategories is the featuredcategories response.
type FeaturedCategories struct {
	TopSellers      Bucket `json:"top_sellers"`
	NewReleases     Bucket `json:"new_releases"`
	Specials        Bucket `json:"specials"`
	TopRated        Bucket `json:"top_rated"`
	PopularUpcoming Bucket `json:"popular_upcoming"`
}

// Featured is the featured response; only the Windows list is used.
type Featured struct {
	FeaturedWin []Item `json:"featured_win"`
}

// StoreSearch is the storesearch response.
type StoreSearch struct {
	Total int    `json:"total"`
	Items []Item `json:"items"`
}

type playerCountResponse struct {
	Response struct {
		PlayerCount int `json:"player_count"`
		Result      int `json:"result"`
	} `json:"response"`
}
