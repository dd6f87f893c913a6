package extract

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/vitorbr/olist-analytics/config"
)

// Dataset names a Kaggle dataset and the files it is expected to contain
// after extraction.
type Dataset struct {
	Ref           string // Kaggle dataset reference, e.g. "olistbr/brazilian-ecommerce"
	Dir           string // subdirectory of the data dir the files are unpacked into
	ExpectedFiles []string
}

// EcommerceFiles is the fixed set of CSV files in the Brazilian e-commerce dataset.
var EcommerceFiles = []string{
	"olist_customers_dataset.csv",
	"olist_orders_dataset.csv",
	"olist_order_items_dataset.csv",
	"olist_order_payments_dataset.csv",
	"olist_order_reviews_dataset.csv",
	"olist_products_dataset.csv",
	"olist_sellers_dataset.csv",
	"olist_geolocation_dataset.csv",
	"product_category_name_translation.csv",
}

// MarketingFiles is the fixed set of CSV files in the marketing funnel dataset.
var MarketingFiles = []string{
	"olist_marketing_qualified_leads_dataset.csv",
	"olist_closed_deals_dataset.csv",
}

// EcommerceDataset is the main dataset; its files feed the raw_ tables.
var EcommerceDataset = Dataset{
	Ref:           "olistbr/brazilian-ecommerce",
	Dir:           "brazilian-ecommerce",
	ExpectedFiles: EcommerceFiles,
}

// MarketingDataset is the companion marketing funnel dataset.
var MarketingDataset = Dataset{
	Ref:           "olistbr/marketing-funnel-olist",
	Dir:           "marketing-funnel",
	ExpectedFiles: MarketingFiles,
}

// Datasets lists everything the ingest pipeline downloads.
var Datasets = []Dataset{EcommerceDataset, MarketingDataset}

const kaggleBaseURL = "https://www.kaggle.com/api/v1"

type KaggleClient struct {
	HTTPClient *retryablehttp.Client
	Logger     *slog.Logger
	BaseURL    string
	creds      *KaggleCredentials
}

func NewKaggleClient(config *config.Config, logger *slog.Logger) (*KaggleClient, error) {
	creds, err := SetupKaggleCredentials(config.Extract.CredentialsFile)
	if err != nil {
		return nil, err
	}

	client := &KaggleClient{
		HTTPClient: retryablehttp.NewClient(),
		Logger:     logger,
		BaseURL:    kaggleBaseURL,
		creds:      creds,
	}

	client.HTTPClient.RetryWaitMin = config.Extract.Backoff.RetryWaitMin
	client.HTTPClient.RetryWaitMax = config.Extract.Backoff.RetryWaitMax
	client.HTTPClient.RetryMax = config.Extract.Backoff.RetryMax
	client.HTTPClient.Logger = logger

	return client, nil
}

// DownloadDataset fetches a dataset archive from the Kaggle API and returns
// the zip file contents.
func (c *KaggleClient) DownloadDataset(ref string) ([]byte, error) {
	url := fmt.Sprintf("%s/datasets/download/%s", c.BaseURL, ref)
	return c.FetchData(url, fmt.Sprintf("dataset archive %s", ref))
}

// FetchData handles the common logic of making the HTTP request and checking the response status
func (c *KaggleClient) FetchData(url, description string) ([]byte, error) {
	body, resp, err := c.get(url)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch the `%s` file, status: %s, body: %s", description, resp.Status, string(body))
	}

	return body, nil
}

// get fetches the URL with basic auth and returns the body and response
func (c *KaggleClient) get(url string) (body []byte, resp *http.Response, err error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, err
	}
	req.SetBasicAuth(c.creds.Username, c.creds.Key)

	resp, err = c.HTTPClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return body, resp, nil
}
