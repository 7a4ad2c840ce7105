package server

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docflow/docflow/extract"
	"github.com/docflow/docflow/job"
)

func TestSubmitAndPollToCompletion(t *testing.T) {
	engine := &stubEngine{result: &extract.Result{
		RawText: "Договор № 001/2024",
		Fields:  extract.Fields{Number: "001/2024", CustomerName: "ООО «СтройИнвест»"},
	}}
	env := newTestEnv(t, engine)

	id := env.submitDocument(t, "contract.pdf", []byte("scanned contract"))

	final := env.awaitJobStatus(t, id, job.StatusCompleted)
	assert.Equal(t, float64(100), final["progress"])

	result, ok := final["result"].(map[string]interface{})
	require.True(t, ok, "completed job must carry a result")
	fields, ok := result["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "001/2024", fields["number"])
}

func TestSubmitMultipartForm(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", "upload.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("scanned contract"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	resp, err := http.Post(env.ts.URL+"/api/jobs", form.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "upload.pdf", body["document_name"])
	assert.Equal(t, string(job.StatusPending), body["status"])
}

func TestSubmitWithoutDocumentName(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})

	resp, err := http.Post(env.ts.URL+"/api/jobs", "application/octet-stream",
		bytes.NewReader([]byte("scanned contract")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStatusOfUnknownJob(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})

	body := env.getJSON(t, "/api/jobs/no-such-job", http.StatusNotFound)
	assert.Contains(t, body["error"], "not found")
}

func TestCancelCompletedJobConflicts(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})

	id := env.submitDocument(t, "done.pdf", []byte("scanned contract"))
	env.awaitJobStatus(t, id, job.StatusCompleted)

	body := env.postJSON(t, "/api/jobs/"+id+"/cancel", nil, http.StatusConflict)
	assert.Contains(t, body["error"], "terminal")
}

func TestListJobsEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})

	for _, name := range []string{"a.pdf", "b.pdf"} {
		env.submitDocument(t, name, []byte("scanned contract"))
	}

	body := env.getJSON(t, "/api/jobs", http.StatusOK)
	jobs, ok := body["jobs"].([]interface{})
	require.True(t, ok)
	assert.Len(t, jobs, 2)

	resp := env.getJSON(t, "/api/jobs?limit=1", http.StatusOK)
	jobs, ok = resp["jobs"].([]interface{})
	require.True(t, ok)
	assert.Len(t, jobs, 1)
}

func TestFailedJobExposesErrorNotResult(t *testing.T) {
	env := newTestEnv(t, &stubEngine{err: assert.AnError})

	id := env.submitDocument(t, "broken.pdf", []byte("scanned contract"))
	final := env.awaitJobStatus(t, id, job.StatusFailed)

	assert.NotEmpty(t, final["error"])
	assert.Nil(t, final["result"])
}

func TestRegisterCompletedExtraction(t *testing.T) {
	engine := &stubEngine{result: &extract.Result{
		Fields: extract.Fields{
			Number:             "007/2024",
			ContractDate:       "01.02.2024",
			CustomerName:       "ООО «СтройИнвест»",
			ContractorName:     "ООО «МонтажСервис»",
			AmountIncludingVAT: "500000,00",
		},
	}}
	env := newTestEnv(t, engine)

	id := env.submitDocument(t, "contract.pdf", []byte("scanned contract"))
	env.awaitJobStatus(t, id, job.StatusCompleted)

	created := env.postJSON(t, "/api/jobs/"+id+"/register", nil, http.StatusCreated)
	assert.Equal(t, "007/2024", created["number"])

	contracts := env.getJSON(t, "/api/contracts", http.StatusOK)
	list, ok := contracts["contracts"].([]interface{})
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestRegisterFailedJobConflicts(t *testing.T) {
	env := newTestEnv(t, &stubEngine{err: assert.AnError})

	id := env.submitDocument(t, "broken.pdf", []byte("scanned contract"))
	env.awaitJobStatus(t, id, job.StatusFailed)

	body := env.postJSON(t, "/api/jobs/"+id+"/register", nil, http.StatusConflict)
	assert.Contains(t, body["error"], "no extraction result")
}

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, &stubEngine{})

	body := env.getJSON(t, "/api/health", http.StatusOK)
	assert.Equal(t, "ok", body["status"])
}
