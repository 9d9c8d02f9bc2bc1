package azure

import (
	"context"
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/dns/armdns"
	"github.com/giantswarm/microerror"

	janitorerrors "github.com/yuriy-kovalchuk/yk-dns-janitor/internal/errors"
	"github.com/yuriy-kovalchuk/yk-dns-janitor/internal/metrics"
)

// recordSets is the slice of the record set API the provider needs.
type recordSets interface {
	List(ctx context.Context, resourceGroup, zone string) ([]*armdns.RecordSet, error)
	GetA(ctx context.Context, resourceGroup, zone, name string) (armdns.RecordSet, error)
	UpdateA(ctx context.Context, resourceGroup, zone, name string, set armdns.RecordSet) error
	DeleteA(ctx context.Context, resourceGroup, zone, name string, etag *string) error
}

type azureClient struct {
	recordSets *armdns.RecordSetsClient
}

var _ recordSets = (*azureClient)(nil)

func newAzureClient(subscriptionID string, cred azcore.TokenCredential) (*azureClient, error) {
	rs, err := armdns.NewRecordSetsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, microerror.Mask(err)
	}
	return &azureClient{recordSets: rs}, nil
}

func (ac *azureClient) List(ctx context.Context, resourceGroup, zone string) ([]*armdns.RecordSet, error) {
	metrics.APIRequest.WithLabelValues(providerName, "recordSets.NewListByDNSZonePager").Inc()

	pager := ac.recordSets.NewListByDNSZonePager(resourceGroup, zone, nil)
	var sets []*armdns.RecordSet
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			metrics.APIRequestError.WithLabelValues(providerName, "recordSets.NewListByDNSZonePager").Inc()
			return nil, microerror.Mask(err)
		}
		sets = append(sets, page.RecordSetListResult.Value...)
	}
	return sets, nil
}

func (ac *azureClient) GetA(ctx context.Context, resourceGroup, zone, name string) (armdns.RecordSet, error) {
	metrics.APIRequest.WithLabelValues(providerName, "recordSets.Get").Inc()

	resp, err := ac.recordSets.Get(ctx, resourceGroup, zone, name, armdns.RecordTypeA, nil)
	if err != nil {
		metrics.APIRequestError.WithLabelValues(providerName, "recordSets.Get").Inc()
		return armdns.RecordSet{}, maskNotFound(err)
	}
	return resp.RecordSet, nil
}

func (ac *azureClient) UpdateA(ctx context.Context, resourceGroup, zone, name string, set armdns.RecordSet) error {
	metrics.APIRequest.WithLabelValues(providerName, "recordSets.CreateOrUpdate").Inc()

	_, err := ac.recordSets.CreateOrUpdate(ctx, resourceGroup, zone, name, armdns.RecordTypeA, set,
		&armdns.RecordSetsClientCreateOrUpdateOptions{IfMatch: set.Etag})
	if err != nil {
		metrics.APIRequestError.WithLabelValues(providerName, "recordSets.CreateOrUpdate").Inc()
		return maskNotFound(err)
	}
	return nil
}

func (ac *azureClient) DeleteA(ctx context.Context, resourceGroup, zone, name string, etag *string) error {
	metrics.APIRequest.WithLabelValues(providerName, "recordSets.Delete").Inc()

	_, err := ac.recordSets.Delete(ctx, resourceGroup, zone, name, armdns.RecordTypeA,
		&armdns.RecordSetsClientDeleteOptions{IfMatch: etag})
	if err != nil {
		metrics.APIRequestError.WithLabelValues(providerName, "recordSets.Delete").Inc()
		return maskNotFound(err)
	}
	return nil
}

func maskNotFound(err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
		return microerror.Maskf(janitorerrors.NotFoundError, "azure: %s", respErr.ErrorCode)
	}
	return microerror.Mask(err)
}
