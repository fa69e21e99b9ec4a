package google

import (
	"testing"

	"Buddy/internal/config"

	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"go.uber.org/zap"
)

func TestRequest(t *testing.T) {
	c := New(config.Defaults().GoogleTTS, nil, zap.NewNop().Sugar())
	req := c.request("Ok")
	if req.GetInput().GetText() != "Ok" {
		t.Errorf("input = %v", req.GetInput())
	}
	if req.GetVoice().GetLanguageCode() != "en-US" || req.GetVoice().GetName() != "en-US-Standard-C" {
		t.Errorf("voice = %v", req.GetVoice())
	}
	if req.GetAudioConfig().GetAudioEncoding() != ttspb.AudioEncoding_MP3 || req.GetAudioConfig().GetSpeakingRate() != 1.0 {
		t.Errorf("audio = %v", req.GetAudioConfig())
	}
}
