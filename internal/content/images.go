package content

import (
	"context"
	"math/rand"
	"net/http"

	"server/internal/domain"
)

// Stock backgrounds bundled with the content store. A new protocol gets one
// of these at random until the practitioner uploads a real preview image.
var stockImageNames = []string{
	"fractalize-clear-lagoon",
	"fractalize-cool-backgrounds",
	"fractalize-ember-spark",
	"fractalize-persian-lounge",
	"fractalize-ranger-made",
	"fractalize-ruby-garden",
	"fractalize-sea-edge",
	"fractalize-spanish-paprika",
	"fractalize-tropical-salad",
	"fractalize-wooded-flora",
}

type assetResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// DefaultImage provisions a stock preview image and returns its reference.
func (c *Client) DefaultImage(ctx context.Context) (domain.ImageRef, error) {
	name := stockImageNames[rand.Intn(len(stockImageNames))]
	var asset assetResponse
	body := map[string]any{"stock_name": name}
	if err := c.do(ctx, http.MethodPost, "/v1/assets/stock", body, &asset); err != nil {
		return domain.ImageRef{}, err
	}
	return domain.ImageRef{AssetID: asset.ID, Alt: "Imagem padrão do protocolo"}, nil
}
